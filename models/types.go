package models

import "time"

// Poll type constants
type PollType string

const (
	PollTypeTemplate PollType = "template"
	PollTypeCustom   PollType = "custom"
)

// Access token type constants
type TokenType string

const (
	TokenCode  TokenType = "code"
	TokenShare TokenType = "share"
)

// Domain types
//
// Everything below is the camelCase shape the core operates on. The wire
// shapes the remote API speaks live in wire.go.

type PollMedia struct {
	ID        int    `json:"id"`
	URL       string `json:"url"`
	FileName  string `json:"fileName"`
	SortOrder int    `json:"sortOrder"`
}

// PollOption result fields are nil until results are computed or visible.
type PollOption struct {
	ID           int      `json:"id"`
	Label        string   `json:"label"`
	Description  *string  `json:"description,omitempty"`
	ImageURL     *string  `json:"imageUrl,omitempty"`
	TemplateID   *int     `json:"templateId,omitempty"`
	TemplateName *string  `json:"templateName,omitempty"`
	VotesCount   *int     `json:"votesCount,omitempty"`
	Percentage   *float64 `json:"percentage,omitempty"`
}

type Poll struct {
	ID                    int          `json:"id"`
	Title                 string       `json:"title"`
	Description           string       `json:"description"`
	CoverImageURL         *string      `json:"coverImageUrl,omitempty"`
	Media                 []PollMedia  `json:"media"`
	Type                  PollType     `json:"type"`
	IsActive              bool         `json:"isActive"`
	IsOpen                bool         `json:"isOpen"`
	IsMultipleChoice      bool         `json:"isMultipleChoice"`
	MaxVotesPerGuest      int          `json:"maxVotesPerGuest"`
	ShowResultsBeforeVote bool         `json:"showResultsBeforeVote"`
	UseForFinalization    bool         `json:"useForFinalization"`
	CloseAt               *time.Time   `json:"closeAt,omitempty"`
	CanVote               bool         `json:"canVote"`
	MyVotes               []int        `json:"myVotes"`
	TotalVotes            int          `json:"totalVotes"`
	UniqueVoters          int          `json:"uniqueVoters"`
	OptionsCount          int          `json:"optionsCount"`
	ParticipationRate     float64      `json:"participationRate"`
	Options               []PollOption `json:"options,omitempty"`
	CreatedAt             time.Time    `json:"createdAt"`
}

// WithMyVotes returns a copy of p whose vote set is votes. The receiver is
// left untouched so snapshots held elsewhere stay valid.
func (p Poll) WithMyVotes(votes []int) Poll {
	p.MyVotes = append([]int{}, votes...)
	return p
}

// WithVoteResult applies a vote response: the confirmed vote set and whether
// another vote is allowed. A result without a vote set leaves p as is.
func (p Poll) WithVoteResult(r VoteResult) Poll {
	if r.MyVotes == nil {
		return p
	}
	p = p.WithMyVotes(r.MyVotes)
	p.CanVote = r.CanVoteMore
	return p
}

// WithoutResults drops the per-option counts, which go stale once a vote
// lands.
func (p Poll) WithoutResults() Poll {
	if p.Options == nil {
		return p
	}
	opts := make([]PollOption, len(p.Options))
	for i, o := range p.Options {
		o.VotesCount = nil
		o.Percentage = nil
		opts[i] = o
	}
	p.Options = opts
	return p
}

// PollResults always carries populated result fields on its options.
type PollResults struct {
	PollID            int          `json:"pollId"`
	Title             string       `json:"title"`
	IsOpen            bool         `json:"isOpen"`
	TotalVotes        int          `json:"totalVotes"`
	UniqueVoters      int          `json:"uniqueVoters"`
	ParticipationRate float64      `json:"participationRate"`
	Options           []PollOption `json:"options"`
}

type Participant struct {
	ID             int        `json:"id"`
	GuestName      string     `json:"guestName"`
	GuestEmail     *string    `json:"guestEmail,omitempty"`
	IsBanned       bool       `json:"isBanned"`
	IsExtra        bool       `json:"isExtra"`
	LastActivityAt *time.Time `json:"lastActivityAt,omitempty"`
	VotesCount     int        `json:"votesCount"`
}

type ParticipantStatistics struct {
	TotalCount        int     `json:"totalCount"`
	ActiveCount       int     `json:"activeCount"`
	BannedCount       int     `json:"bannedCount"`
	ExtraCount        int     `json:"extraCount"`
	RegularCount      int     `json:"regularCount"`
	Active24h         int     `json:"active24h"`
	ExpectedClassSize *int    `json:"expectedClassSize,omitempty"`
	ParticipationRate float64 `json:"participationRate"`
}

type ParticipantList struct {
	Participants   []Participant         `json:"participants"`
	Statistics     ParticipantStatistics `json:"statistics"`
	CurrentGuestID *int                  `json:"currentGuestId,omitempty"`
}

type Contact struct {
	Name  string  `json:"name"`
	Email *string `json:"email,omitempty"`
}

// Project is the tenant as seen by the current viewer. Owned by the auth
// collaborator; the voting core only reads it.
type Project struct {
	ID                int       `json:"id"`
	Name              string    `json:"name"`
	ExpectedClassSize *int      `json:"expectedClassSize,omitempty"`
	Contacts          []Contact `json:"contacts"`
}

// PrimaryContact returns the first contact with a usable name.
func (p *Project) PrimaryContact() (Contact, bool) {
	if p == nil || len(p.Contacts) == 0 || p.Contacts[0].Name == "" {
		return Contact{}, false
	}
	return p.Contacts[0], true
}

// GuestSession is the local marker proving this viewer already registered.
type GuestSession struct {
	ProjectID  int     `json:"projectId"`
	Token      string  `json:"token"`
	GuestID    int     `json:"guestId"`
	GuestName  string  `json:"guestName"`
	GuestEmail *string `json:"guestEmail,omitempty"`
}

// Mutation results

type VoteResult struct {
	Message     string `json:"message"`
	MyVotes     []int  `json:"myVotes"`
	CanVoteMore bool   `json:"canVoteMore"`
}

type ToggleExtraResult struct {
	IsExtra bool `json:"isExtra"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
