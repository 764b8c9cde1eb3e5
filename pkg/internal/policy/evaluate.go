package policy

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Verdict is the outcome of evaluating one inbound message against the
// mute configuration.
type Verdict struct {
	Unread  bool
	Mention bool
}

// Target describes where a message landed.
type Target struct {
	ChannelID string
	ParentID  string // owning category, empty when the channel has none
	SenderID  string
}

// Evaluate decides whether a message contributes to the unread set and the
// mention counter. The plain mute and mention-mute axes are independent: a
// channel can be mention-muted while still flipping unread, and vice versa.
func Evaluate(cfg MuteConfig, content string, target Target, selfUsername string, now time.Time) Verdict {
	if cfg.IsUserMuted(target.SenderID, now) {
		return Verdict{}
	}

	verdict := Verdict{
		Unread: !cfg.IsChannelMuted(target.ChannelID, now) &&
			(target.ParentID == "" || !cfg.IsCategoryMuted(target.ParentID, now)),
	}

	if !ContainsMention(content, selfUsername) {
		return verdict
	}
	if cfg.AreChannelMentionsMuted(target.ChannelID, now) {
		return verdict
	}
	if target.ParentID != "" && cfg.AreCategoryMentionsMuted(target.ParentID, now) {
		return verdict
	}
	verdict.Mention = true
	return verdict
}

// ContainsMention reports whether content carries an "@everyone" or "@here"
// token, or a case-insensitive, word-bounded "@username" token.
func ContainsMention(content, selfUsername string) bool {
	if strings.Contains(content, "@everyone") || strings.Contains(content, "@here") {
		return true
	}
	if selfUsername == "" {
		return false
	}
	pattern := fmt.Sprintf(`(?i)@%s\b`, regexp.QuoteMeta(selfUsername))
	matched, _ := regexp.MatchString(pattern, content)
	return matched
}
