package models

import (
	"time"

	"github.com/awalczak/memodeck/internal/srs"
)

// StudySession is one continuous review pass over a due-set snapshot.
// EndedAt is nil while the session is active.
type StudySession struct {
	ID            string     `json:"id"`
	UserID        string     `json:"-"`
	DeckID        string     `json:"deck_id"`
	StartedAt     time.Time  `json:"started_at"`
	EndedAt       *time.Time `json:"ended_at"`
	CardsReviewed int        `json:"cards_reviewed"`
}

// StudySessionDetail adds the deck name to the session view.
type StudySessionDetail struct {
	StudySession
	DeckName string `json:"deck_name"`
}

// CompletedSession is returned from the complete operation.
type CompletedSession struct {
	StudySession
	DurationSeconds int `json:"duration_seconds"`
}

// ReviewRecord carries everything the store needs to persist one rating
// event atomically: the new card state, the history row, the snapshot
// bookkeeping and the session counter.
type ReviewRecord struct {
	SessionID      string
	FlashcardID    string
	UserID         string
	Rating         srs.Rating
	ResponseTimeMS *int
	State          srs.Result
	ReviewedAt     time.Time
}

// ReviewOutcome reports the result of persisting a review.
type ReviewOutcome struct {
	ReviewID      string
	CardsReviewed int
	Completed     bool
	EndedAt       *time.Time
}

// SessionProgress is the session summary embedded in a review response.
type SessionProgress struct {
	ID            string     `json:"id"`
	CardsReviewed int        `json:"cards_reviewed"`
	Completed     bool       `json:"completed"`
	EndedAt       *time.Time `json:"ended_at,omitempty"`
}

// ReviewResponse is returned from the submit-review operation.
type ReviewResponse struct {
	ReviewID  string          `json:"review_id"`
	Flashcard Flashcard       `json:"flashcard"`
	Session   SessionProgress `json:"session"`
}

// StartedSession is returned from session creation, carrying the due-set
// snapshot the client will walk through.
type StartedSession struct {
	StudySession
	Flashcards []DueFlashcard `json:"flashcards"`
}

// ReviewHistory is one immutable rating event.
type ReviewHistory struct {
	ID             string    `json:"id"`
	UserID         string    `json:"-"`
	SessionID      string    `json:"session_id"`
	FlashcardID    string    `json:"flashcard_id"`
	Rating         int       `json:"rating"`
	ResponseTimeMS *int      `json:"response_time_ms"`
	ReviewedAt     time.Time `json:"reviewed_at"`
}
