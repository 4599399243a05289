// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

// Wire types spoken by the remote voting API. Field names are snake_case;
// nothing outside the mapping layer and the HTTP client should touch these.

// Envelope wraps every remote response.
type Envelope[T any] struct {
	Success           bool   `json:"success"`
	Message           string `json:"message,omitempty"`
	Data              T      `json:"data"`
	RequiresClassSize bool   `json:"requires_class_size,omitempty"`
}

type APIPollMedia struct {
	ID        int    `json:"id"`
	URL       string `json:"url"`
	FileName  string `json:"fileName"`
	SortOrder int    `json:"sortOrder"`
}

type APIPollOption struct {
	ID           int      `json:"id"`
	Label        string   `json:"label"`
	Description  *string  `json:"description,omitempty"`
	ImageURL     *string  `json:"image_url,omitempty"`
	TemplateID   *int     `json:"template_id,omitempty"`
	TemplateName *string  `json:"template_name,omitempty"`
	VotesCount   *int     `json:"votes_count,omitempty"`
	Percentage   *float64 `json:"percentage,omitempty"`
}

type APIPoll struct {
	ID                    int             `json:"id"`
	Title                 string          `json:"title"`
	Description           *string         `json:"description,omitempty"`
	CoverImageURL         *string         `json:"cover_image_url,omitempty"`
	Media                 []APIPollMedia  `json:"media,omitempty"`
	Type                  string          `json:"type"`
	IsActive              bool            `json:"is_active"`
	IsMultipleChoice      bool            `json:"is_multiple_choice"`
	MaxVotesPerGuest      int             `json:"max_votes_per_guest"`
	ShowResultsBeforeVote bool            `json:"show_results_before_vote"`
	UseForFinalization    bool            `json:"use_for_finalization"`
	CloseAt               *string         `json:"close_at,omitempty"`
	IsOpen                bool            `json:"is_open"`
	CanVote               bool            `json:"can_vote"`
	MyVotes               []int           `json:"my_votes,omitempty"`
	TotalVotes            int             `json:"total_votes"`
	UniqueVoters          int             `json:"unique_voters"`
	OptionsCount          int             `json:"options_count"`
	Options               []APIPollOption `json:"options,omitempty"`
	ParticipationRate     float64         `json:"participation_rate"`
	CreatedAt             string          `json:"created_at"`
}

type APIResults struct {
	Poll struct {
		ID     int    `json:"id"`
		Title  string `json:"title"`
		IsOpen bool   `json:"is_open"`
	} `json:"poll"`
	TotalVotes        int             `json:"total_votes"`
	UniqueVoters      int             `json:"unique_voters"`
	ParticipationRate float64         `json:"participation_rate"`
	Options           []APIPollOption `json:"options"`
}

type APIVote struct {
	VoteID      int   `json:"vote_id,omitempty"`
	MyVotes     []int `json:"my_votes"`
	CanVoteMore bool  `json:"can_vote_more"`
}

type APIParticipant struct {
	ID             int     `json:"id"`
	GuestName      string  `json:"guest_name"`
	GuestEmail     *string `json:"guest_email,omitempty"`
	IsBanned       bool    `json:"is_banned"`
	IsExtra        bool    `json:"is_extra"`
	LastActivityAt *string `json:"last_activity_at,omitempty"`
	VotesCount     int     `json:"votes_count"`
}

type APIParticipantStatistics struct {
	Total             int     `json:"total"`
	Active            int     `json:"active"`
	Banned            int     `json:"banned"`
	Extra             int     `json:"extra"`
	Regular           int     `json:"regular"`
	Active24h         int     `json:"active_24h"`
	ExpectedClassSize *int    `json:"expected_class_size,omitempty"`
	ParticipationRate float64 `json:"participation_rate"`
}

type APIParticipants struct {
	Participants   []APIParticipant         `json:"participants"`
	Statistics     APIParticipantStatistics `json:"statistics"`
	CurrentGuestID *int                     `json:"current_guest_id,omitempty"`
}

type APIToggleExtra struct {
	IsExtra bool `json:"is_extra"`
}

type APIGuestSession struct {
	ID           int     `json:"id"`
	SessionToken string  `json:"session_token"`
	GuestName    string  `json:"guest_name"`
	GuestEmail   *string `json:"guest_email,omitempty"`
}

type APIClassSize struct {
	ExpectedClassSize int `json:"expected_class_size"`
}

// Request bodies

type APIVoteRequest struct {
	OptionID int `json:"option_id"`
}

type APIRemoveVoteRequest struct {
	OptionID *int `json:"option_id,omitempty"`
}

type APIReopenRequest struct {
	CloseAt *string `json:"close_at,omitempty"`
}

type APIRegisterGuestRequest struct {
	GuestName  string  `json:"guest_name"`
	GuestEmail *string `json:"guest_email,omitempty"`
}

type APIClassSizeRequest struct {
	ExpectedClassSize int `json:"expected_class_size"`
}
