package service

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/maggie-r-m-88/commonscapes/internal/domain"
	"github.com/maggie-r-m-88/commonscapes/internal/prompts"
)

// Completer is the chat-completion capability the tag service depends on.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Model() string
}

// TagService generates discovery tags for images and categorizes tag texts
// for the normalizer, with bounded retry on transient enrichment faults.
type TagService struct {
	chat       Completer
	maxRetries int
	retryBase  time.Duration
	sleep      SleepFunc
}

// TagServiceConfig holds retry configuration for the tag service.
type TagServiceConfig struct {
	MaxRetries    int
	RetryInterval time.Duration

	// Sleep overrides the backoff delay; nil uses a real timer.
	Sleep SleepFunc
}

// NewTagService creates a new tag service on top of a chat completer.
func NewTagService(chat Completer, cfg *TagServiceConfig) *TagService {
	maxRetries := 5
	retryBase := 1500 * time.Millisecond
	var sleep SleepFunc
	if cfg != nil {
		if cfg.MaxRetries > 0 {
			maxRetries = cfg.MaxRetries
		}
		if cfg.RetryInterval > 0 {
			retryBase = cfg.RetryInterval
		}
		sleep = cfg.Sleep
	}
	return &TagService{
		chat:       chat,
		maxRetries: maxRetries,
		retryBase:  retryBase,
		sleep:      sleep,
	}
}

// Model returns the underlying chat model identifier, recorded on tag
// candidate rows.
func (s *TagService) Model() string {
	return s.chat.Model()
}

// GenerateTags produces the discovery tag list for an image draft.
// Transient faults are retried; a response that cannot be parsed is not,
// since retrying will not fix a parsing defect.
func (s *TagService) GenerateTags(ctx context.Context, image *domain.Image) ([]string, error) {
	prompt := prompts.TagPrompt(image.Title, image.Description, image.Categories)

	var content string
	err := retryTransient(ctx, s.maxRetries, s.retryBase, s.sleep, func() error {
		var err error
		content, err = s.chat.Complete(ctx, prompt)
		return err
	})
	if err != nil {
		return nil, err
	}

	return parseTagArray(content)
}

// CategorizeTags assigns one broad category per tag text, for a batch of
// distinct tags. Same retry and parsing policy as GenerateTags.
func (s *TagService) CategorizeTags(ctx context.Context, tags []string) (map[string]string, error) {
	prompt := prompts.CategorizePrompt(tags)

	var content string
	err := retryTransient(ctx, s.maxRetries, s.retryBase, s.sleep, func() error {
		var err error
		content, err = s.chat.Complete(ctx, prompt)
		return err
	})
	if err != nil {
		return nil, err
	}

	return parseTagCategories(content)
}

var (
	arrayPattern  = regexp.MustCompile(`\[[\s\S]*\]`)
	objectPattern = regexp.MustCompile(`\{[\s\S]*\}`)
)

// parseTagArray parses the model's tag list. Strict JSON first; when the
// model wrapped the array in prose, the bracketed substring is salvaged.
func parseTagArray(content string) ([]string, error) {
	trimmed := strings.TrimSpace(content)

	var tags []string
	if err := json.Unmarshal([]byte(trimmed), &tags); err != nil {
		match := arrayPattern.FindString(trimmed)
		if match == "" {
			return nil, &MalformedResponseError{Reason: "no JSON array in content", Content: content}
		}
		if err := json.Unmarshal([]byte(match), &tags); err != nil {
			return nil, &MalformedResponseError{Reason: "unparseable JSON array", Content: content}
		}
	}

	cleaned := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			cleaned = append(cleaned, t)
		}
	}
	return cleaned, nil
}

// parseTagCategories parses the tag-to-category object from the
// categorization response.
func parseTagCategories(content string) (map[string]string, error) {
	trimmed := strings.TrimSpace(content)

	var categories map[string]string
	if err := json.Unmarshal([]byte(trimmed), &categories); err != nil {
		match := objectPattern.FindString(trimmed)
		if match == "" {
			return nil, &MalformedResponseError{Reason: "no JSON object in content", Content: content}
		}
		if err := json.Unmarshal([]byte(match), &categories); err != nil {
			return nil, &MalformedResponseError{Reason: "unparseable JSON object", Content: content}
		}
	}
	return categories, nil
}
