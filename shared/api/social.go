package api

import "encoding/json"

// Request DTOs shared by the backend handlers and the CLI client

type CreateProfileRequest struct {
	WalletAddress string `json:"walletAddress" validate:"required,solana_address"`
	Username      string `json:"username" validate:"required,min=3,max=32,alphanum"`
	Bio           string `json:"bio,omitempty" validate:"max=500"`
	Image         string `json:"image,omitempty" validate:"omitempty,url"`
}

type UpdateProfileRequest struct {
	Username string `json:"username,omitempty" validate:"omitempty,min=3,max=32,alphanum"`
	Bio      string `json:"bio,omitempty" validate:"max=500"`
	Image    string `json:"image,omitempty" validate:"omitempty,url"`
}

type FollowRequest struct {
	StartId string `json:"startId" validate:"required"` // follower profile
	EndId   string `json:"endId" validate:"required,nefield=StartId"`
}

type CreateCommentRequest struct {
	ProfileId string `json:"profileId" validate:"required"`
	ContentId string `json:"contentId,omitempty" validate:"required_without=CommentId"`
	CommentId string `json:"commentId,omitempty"` // reply target
	Text      string `json:"text" validate:"required"`
}

type LikeRequest struct {
	StartId string `json:"startId" validate:"required"` // liking profile
}

type PriorityFeeRequest struct {
	AccountKeys []string `json:"accountKeys,omitempty" validate:"required_without=Transaction,dive,solana_address"`
	Transaction string   `json:"transaction,omitempty"` // base58 serialized
}

// Response DTOs
// Upstream payloads are passed through as json.RawMessage unless a route
// narrows or enriches them.

type Profile struct {
	Id            string `json:"id"`
	Username      string `json:"username"`
	Bio           string `json:"bio,omitempty"`
	Image         string `json:"image,omitempty"`
	WalletAddress string `json:"walletAddress,omitempty"`
}

type ProfileEnvelope struct {
	Profile       Profile       `json:"profile"`
	WalletAddress string        `json:"walletAddress,omitempty"`
	Wallet        *WalletRef    `json:"wallet,omitempty"`
	SocialCounts  *SocialCounts `json:"socialCounts,omitempty"`
}

type WalletRef struct {
	Address string `json:"address"`
}

// Owner returns the wallet linked to the profile, wherever Tapestry put it.
func (e ProfileEnvelope) Owner() string {
	switch {
	case e.WalletAddress != "":
		return e.WalletAddress
	case e.Wallet != nil && e.Wallet.Address != "":
		return e.Wallet.Address
	default:
		return e.Profile.WalletAddress
	}
}

type SocialCounts struct {
	Followers int `json:"followers"`
	Following int `json:"following"`
}

type Comment struct {
	Id        string          `json:"id"`
	Text      string          `json:"text"`
	TextHtml  string          `json:"textHtml,omitempty"`
	CreatedAt json.RawMessage `json:"created_at,omitempty"`
}

// CommentItem is one element of Tapestry's comment listing. Unknown fields
// are kept in Extra so enrichment never drops data.
type CommentItem struct {
	Comment Comment                    `json:"comment"`
	Extra   map[string]json.RawMessage `json:"-"`
}

type CommentsResponse struct {
	Comments []CommentItem `json:"comments"`
	Page     int           `json:"page,omitempty"`
	PageSize int           `json:"pageSize,omitempty"`
}

type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (c *CommentItem) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if raw, ok := fields["comment"]; ok {
		if err := json.Unmarshal(raw, &c.Comment); err != nil {
			return err
		}
		delete(fields, "comment")
	}
	c.Extra = fields
	return nil
}

func (c CommentItem) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Extra)+1)
	for k, v := range c.Extra {
		out[k] = v
	}
	out["comment"] = c.Comment
	return json.Marshal(out)
}
