package api

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/awalczak/memodeck/internal/db"
	"github.com/awalczak/memodeck/internal/services"
)

// Server wires the HTTP surface to the service layer.
type Server struct {
	DB         *db.DB
	Auth       services.AuthService
	Decks      services.DeckService
	Cards      services.CardService
	Study      services.StudyService
	Generation services.GenerationService

	validate *validator.Validate
}

// NewServer creates a Server with its request validator.
func NewServer(database *db.DB, auth services.AuthService, decks services.DeckService, cards services.CardService, study services.StudyService, generation services.GenerationService) *Server {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Validation errors name the JSON field, not the Go struct field.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Server{
		DB:         database,
		Auth:       auth,
		Decks:      decks,
		Cards:      cards,
		Study:      study,
		Generation: generation,
		validate:   v,
	}
}
