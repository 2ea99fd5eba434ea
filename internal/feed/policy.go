package feed

import (
	"time"

	"github.com/fritter/fritter/pkg/config"
)

// Policy holds the tunable rules of the feed core. Defaults match the
// shipped product behavior; cmd binaries build one from configuration.
type Policy struct {
	// MaxContentLen is the maximum freet length after trimming.
	MaxContentLen int
	// AuditWindow is how long an audit stays open before a resolution is
	// computed.
	AuditWindow time.Duration
	// ReportDownvoteFloor is the downvote count a freet must exceed before
	// reports can trigger an audit.
	ReportDownvoteFloor int64
	// ReportRatioDivisor scales downvotes into the report threshold: an
	// audit triggers when totalReports > downCount/ReportRatioDivisor.
	ReportRatioDivisor float64
	// AuditFailRatio is the yes/no ratio at or above which an audit fails.
	AuditFailRatio float64
	// FeedWindow bounds feed views to recently modified freets.
	FeedWindow time.Duration
	// DiscoveryStride is the slot interval drawn from the non-followed pool
	// in the discovery tab.
	DiscoveryStride int
}

// DefaultPolicy returns the production policy
func DefaultPolicy() Policy {
	return Policy{
		MaxContentLen:       140,
		AuditWindow:         12 * time.Hour,
		ReportDownvoteFloor: 10,
		ReportRatioDivisor:  10,
		AuditFailRatio:      2,
		FeedWindow:          7 * 24 * time.Hour,
		DiscoveryStride:     4,
	}
}

// PolicyFromConfig builds a Policy from loaded configuration
func PolicyFromConfig(cfg *config.FeedConfig) Policy {
	return Policy{
		MaxContentLen:       cfg.MaxContentLen,
		AuditWindow:         time.Duration(cfg.AuditWindowHours) * time.Hour,
		ReportDownvoteFloor: int64(cfg.ReportDownvoteFloor),
		ReportRatioDivisor:  cfg.ReportRatioDivisor,
		AuditFailRatio:      cfg.AuditFailRatio,
		FeedWindow:          time.Duration(cfg.FeedWindowDays) * 24 * time.Hour,
		DiscoveryStride:     cfg.DiscoveryStride,
	}
}
