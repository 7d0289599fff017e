// Package classdir resolves Discord channels, roles and class codes to the
// registered class they belong to.
package classdir

import (
	"context"
	"regexp"
	"slices"
	"strings"
)

// ClassRecord is a registered class. ChannelIDs are the channels whose
// messages count as homework submissions for the class.
type ClassRecord struct {
	ClassCode        string
	RoleID           string
	ChannelIDs       []string
	Title            string
	ImageURL         string
	TotalAssignments int
	ServerID         string
}

func (c *ClassRecord) HasChannel(channelID string) bool {
	return slices.Contains(c.ChannelIDs, channelID)
}

// RoleMention is the Discord mention of the class role, empty if the class
// has no role.
func (c *ClassRecord) RoleMention() string {
	if c.RoleID == "" {
		return ""
	}
	return "<@&" + c.RoleID + ">"
}

// Directory looks classes up. A nil record with a nil error means not found.
type Directory interface {
	FindByChannel(ctx context.Context, channelID string) (*ClassRecord, error)
	FindByCode(ctx context.Context, classCode string) (*ClassRecord, error)
	FindByRole(ctx context.Context, roleID string) (*ClassRecord, error)
}

// Registry is a Directory that can also store classes.
type Registry interface {
	Directory
	Save(ctx context.Context, class ClassRecord) error
}

const (
	minClassCodeLen = 6
	maxClassCodeLen = 7
)

var channelIDRe = regexp.MustCompile(`\d{15,20}`)

// ParseChannelIDs extracts channel snowflakes from free text such as
// "<#123...>, 456...".
func ParseChannelIDs(raw string) []string {
	ids := channelIDRe.FindAllString(raw, -1)
	res := make([]string, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(res, id) {
			res = append(res, id)
		}
	}
	return res
}

// validateNew checks a class before it is saved against the classes already
// registered for the same role and code.
func validateNew(ctx context.Context, dir Directory, class *ClassRecord) error {
	class.ClassCode = strings.TrimSpace(class.ClassCode)
	n := len([]rune(class.ClassCode))
	if n < minClassCodeLen || n > maxClassCodeLen {
		return newErrClassCodeInvalid(minClassCodeLen, maxClassCodeLen)
	}

	channels := make([]string, 0, len(class.ChannelIDs))
	for _, id := range class.ChannelIDs {
		id = strings.TrimSpace(id)
		if id != "" && !slices.Contains(channels, id) {
			channels = append(channels, id)
		}
	}
	if len(channels) == 0 {
		return newErrNoChannels()
	}
	class.ChannelIDs = channels

	if class.RoleID != "" {
		byRole, err := dir.FindByRole(ctx, class.RoleID)
		if err != nil {
			return newErrDirectory().SetDebug(err)
		}
		if byRole != nil && byRole.ClassCode != class.ClassCode {
			return newErrRoleTaken(byRole.ClassCode)
		}
	}

	byCode, err := dir.FindByCode(ctx, class.ClassCode)
	if err != nil {
		return newErrDirectory().SetDebug(err)
	}
	if byCode != nil && byCode.RoleID != class.RoleID {
		return newErrCodeTaken(class.ClassCode)
	}
	return nil
}
