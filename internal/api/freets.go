package api

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fritter/fritter/internal/feed"
	"github.com/fritter/fritter/internal/models"
)

// FreetAPI provides freet lifecycle and moderation methods
type FreetAPI struct {
	freets  *feed.FreetService
	votes   *feed.VoteLedger
	reports *feed.ReportLedger
	audits  *feed.AuditProcess
}

// NewFreetAPI creates a new freet API
func NewFreetAPI(freets *feed.FreetService, votes *feed.VoteLedger, reports *feed.ReportLedger, audits *feed.AuditProcess) *FreetAPI {
	return &FreetAPI{
		freets:  freets,
		votes:   votes,
		reports: reports,
		audits:  audits,
	}
}

// freetView is the wire representation of a freet
type freetView struct {
	ID         int64     `json:"id"`
	AuthorID   int64     `json:"author_id"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`

	Upvotes   int64  `json:"upvotes"`
	Downvotes int64  `json:"downvotes"`
	Flagged   bool   `json:"flagged"`
	Cover     string `json:"cover"`

	SpamReports           int64 `json:"spam_reports"`
	MisinformationReports int64 `json:"misinformation_reports"`
	OffensiveReports      int64 `json:"offensive_reports"`

	AuditState     string     `json:"audit_state"`
	AuditCategory  string     `json:"audit_category,omitempty"`
	AuditYes       int64      `json:"audit_yes,omitempty"`
	AuditNo        int64      `json:"audit_no,omitempty"`
	AuditStartedAt *time.Time `json:"audit_started_at,omitempty"`
}

// newFreetView converts a freet to its wire representation
func newFreetView(f *models.Freet) freetView {
	view := freetView{
		ID:                    f.ID,
		AuthorID:              f.AuthorID,
		Content:               f.Content,
		CreatedAt:             f.CreatedAt,
		ModifiedAt:            f.ModifiedAt,
		Upvotes:               f.UpCount,
		Downvotes:             f.DownCount,
		Flagged:               f.Flagged,
		Cover:                 models.CoverName(f.Cover),
		SpamReports:           f.SpamReports,
		MisinformationReports: f.MisinformationReports,
		OffensiveReports:      f.OffensiveReports,
		AuditState:            models.AuditStateName(f.AuditState),
	}
	if f.AuditState != models.AuditNone {
		view.AuditCategory = models.ReportCategoryName(f.AuditCategory)
		view.AuditYes = f.AuditYes
		view.AuditNo = f.AuditNo
		if f.AuditStartedAt.Valid {
			started := f.AuditStartedAt.Time
			view.AuditStartedAt = &started
		}
	}
	return view
}

// CreateFreet handles fritter.create_freet
func (a *FreetAPI) CreateFreet(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		AuthorID int64  `json:"author_id"`
		Content  string `json:"content"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, feed.InvalidArgumentf("invalid parameters format")
	}

	freet, err := a.freets.Create(c.Request.Context(), p.AuthorID, p.Content)
	if err != nil {
		return nil, err
	}
	return newFreetView(freet), nil
}

// GetFreet handles fritter.get_freet
func (a *FreetAPI) GetFreet(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		FreetID int64 `json:"freet_id"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, feed.InvalidArgumentf("invalid parameters format")
	}

	freet, err := a.freets.Get(c.Request.Context(), p.FreetID)
	if err != nil {
		return nil, err
	}
	return newFreetView(freet), nil
}

// UpdateFreet handles fritter.update_freet
func (a *FreetAPI) UpdateFreet(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		FreetID int64  `json:"freet_id"`
		Content string `json:"content"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, feed.InvalidArgumentf("invalid parameters format")
	}

	freet, err := a.freets.Update(c.Request.Context(), p.FreetID, p.Content)
	if err != nil {
		return nil, err
	}
	return newFreetView(freet), nil
}

// DeleteFreet handles fritter.delete_freet
func (a *FreetAPI) DeleteFreet(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		FreetID int64 `json:"freet_id"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, feed.InvalidArgumentf("invalid parameters format")
	}

	if err := a.freets.Delete(c.Request.Context(), p.FreetID); err != nil {
		return nil, err
	}
	return gin.H{"deleted": true}, nil
}

// Vote handles fritter.vote
func (a *FreetAPI) Vote(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		FreetID int64  `json:"freet_id"`
		UserID  int64  `json:"user_id"`
		Kind    string `json:"kind"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, feed.InvalidArgumentf("invalid parameters format")
	}

	var kind int16
	switch p.Kind {
	case "upvote":
		kind = models.VoteUp
	case "downvote":
		kind = models.VoteDown
	default:
		return nil, feed.InvalidArgumentf("unknown vote kind %q", p.Kind)
	}

	freet, err := a.votes.Vote(c.Request.Context(), p.FreetID, p.UserID, kind)
	if err != nil {
		return nil, err
	}
	return newFreetView(freet), nil
}

// Report handles fritter.report
func (a *FreetAPI) Report(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		FreetID  int64  `json:"freet_id"`
		UserID   int64  `json:"user_id"`
		Category string `json:"category"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, feed.InvalidArgumentf("invalid parameters format")
	}

	var category int16
	switch p.Category {
	case "spam":
		category = models.ReportSpam
	case "misinformation":
		category = models.ReportMisinformation
	case "offensive":
		category = models.ReportOffensive
	default:
		return nil, feed.InvalidArgumentf("unknown report category %q", p.Category)
	}

	freet, err := a.reports.Report(c.Request.Context(), p.FreetID, p.UserID, category)
	if err != nil {
		return nil, err
	}
	return newFreetView(freet), nil
}

// AuditVote handles fritter.audit_vote
func (a *FreetAPI) AuditVote(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		FreetID int64 `json:"freet_id"`
		Confirm bool  `json:"confirm"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, feed.InvalidArgumentf("invalid parameters format")
	}

	freet, err := a.audits.Vote(c.Request.Context(), p.FreetID, p.Confirm)
	if err != nil {
		return nil, err
	}
	if freet == nil {
		// Resolution deleted the freet
		return gin.H{"deleted": true}, nil
	}
	return newFreetView(freet), nil
}
