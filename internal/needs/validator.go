package needs

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	pkgerrors "github.com/angelmondragon/directory-backend/pkg/errors"
	"github.com/google/uuid"
)

const (
	MaxCategories     = 3
	MinOptions        = 1
	MaxOptions        = 2
	MaxContextRunes   = 180
	urlNotAllowedText = "URLs are not allowed in need context"
)

// Reason is the machine-readable cause of a rejected needs set.
type Reason string

const (
	ReasonTooManyCategories      Reason = "too_many_categories"
	ReasonDuplicateCategory      Reason = "duplicate_category"
	ReasonOptionCount            Reason = "option_count"
	ReasonContextTooLong         Reason = "context_too_long"
	ReasonURLInContext           Reason = "url_in_context"
	ReasonInvalidCategory        Reason = "invalid_category"
	ReasonInvalidOption          Reason = "invalid_option"
	ReasonOptionCategoryMismatch Reason = "option_category_mismatch"
)

// urlPattern is a loose heuristic: scheme prefixes, www. and a handful of
// common TLD tokens.
var urlPattern = regexp.MustCompile(`(?i)https?://|www\.|\.com|\.org|\.net|\.io|\.co\b`)

// Membership resolves active taxonomy entries.
type Membership interface {
	HasCategory(id uuid.UUID) bool
	CategoryOf(optionID uuid.UUID) (uuid.UUID, bool)
}

// NeedInput is one proposed need as sent by the project owner.
type NeedInput struct {
	CategoryID  uuid.UUID   `json:"categoryId"`
	OptionIDs   []uuid.UUID `json:"optionIds"`
	ContextText *string     `json:"contextText"`
}

// Need is a validated need ready to persist.
type Need struct {
	CategoryID  uuid.UUID
	OptionIDs   []uuid.UUID
	ContextText *string
}

// Validate checks a proposed needs set against the active taxonomy and
// returns the normalized set. The first failing rule is reported.
func Validate(proposed []NeedInput, tax Membership) ([]Need, error) {
	if len(proposed) > MaxCategories {
		return nil, invalid(ReasonTooManyCategories, -1,
			fmt.Sprintf("at most %d need categories are allowed", MaxCategories))
	}

	seen := make(map[uuid.UUID]struct{}, len(proposed))
	out := make([]Need, 0, len(proposed))
	for i, in := range proposed {
		if _, dup := seen[in.CategoryID]; dup {
			return nil, invalid(ReasonDuplicateCategory, i, "each need category may appear once")
		}
		seen[in.CategoryID] = struct{}{}

		options := dedupe(in.OptionIDs)
		if len(options) < MinOptions || len(options) > MaxOptions {
			return nil, invalid(ReasonOptionCount, i,
				fmt.Sprintf("each need takes %d to %d options", MinOptions, MaxOptions))
		}

		contextText, err := normalizeContext(in.ContextText, i)
		if err != nil {
			return nil, err
		}

		if !tax.HasCategory(in.CategoryID) {
			return nil, invalid(ReasonInvalidCategory, i, "unknown or inactive need category")
		}
		for _, optionID := range options {
			owner, ok := tax.CategoryOf(optionID)
			if !ok {
				return nil, invalid(ReasonInvalidOption, i, "unknown or inactive need option")
			}
			if owner != in.CategoryID {
				return nil, invalid(ReasonOptionCategoryMismatch, i, "option does not belong to the need category")
			}
		}

		out = append(out, Need{CategoryID: in.CategoryID, OptionIDs: options, ContextText: contextText})
	}
	return out, nil
}

func normalizeContext(raw *string, index int) (*string, error) {
	if raw == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*raw)
	if trimmed == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(trimmed) > MaxContextRunes {
		return nil, invalid(ReasonContextTooLong, index,
			fmt.Sprintf("context must be %d characters or fewer", MaxContextRunes))
	}
	if urlPattern.MatchString(trimmed) {
		return nil, invalid(ReasonURLInContext, index, urlNotAllowedText)
	}
	return &trimmed, nil
}

// dedupe drops repeated option ids while keeping first-seen order.
func dedupe(ids []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func invalid(reason Reason, index int, msg string) error {
	err := pkgerrors.New(pkgerrors.CodeValidation, msg).WithReason(string(reason))
	if index >= 0 {
		err = err.WithDetails(map[string]any{"needIndex": index})
	}
	return err
}
