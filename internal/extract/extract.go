// Package extract turns free-form text, typically a voice transcript, into
// a task draft. Extraction never fails: anything the advisory cannot
// structure becomes a default draft carrying the raw text.
package extract

import (
	"context"

	"github.com/okian/delega/internal/advisory"
	"github.com/okian/delega/internal/domain/model"
	"github.com/okian/delega/pkg/logger"
	"github.com/okian/delega/pkg/metrics"
)

const defaultTitle = "New Task"
const defaultTotalHours = 40

// Extractor structures task drafts out of raw text.
type Extractor struct {
	adv advisory.Advisory
	log logger.Logger
}

// NewExtractor creates an extractor over an advisory client.
func NewExtractor(adv advisory.Advisory, opts ...Option) *Extractor {
	x := &Extractor{
		adv: adv,
		log: logger.Get().Named("extract"),
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Extract builds a draft from text. The fallback draft keeps the raw text
// as the description so nothing the manager said is lost.
func (x *Extractor) Extract(ctx context.Context, text string) model.TaskDraft {
	raw, err := x.adv.Complete(ctx, advisory.ExtractRequest(text))
	if err != nil {
		metrics.RecordAdvisoryError()
		x.log.Warn(ctx, "extraction advisory unavailable", logger.Error(err))
		return fallbackDraft(text)
	}

	out, err := advisory.ParseExtraction(raw, text)
	if err != nil {
		metrics.RecordParseError()
		x.log.Warn(ctx, "extraction response unusable", logger.Error(err))
		return fallbackDraft(text)
	}

	skills := out.Skills
	if skills == nil {
		skills = []string{}
	}
	return model.TaskDraft{
		Title:          out.Title,
		Description:    out.Description,
		RequiredSkills: skills,
		Priority:       model.Priority(out.Priority),
		TotalHours:     out.TotalHours,
	}
}

func fallbackDraft(text string) model.TaskDraft {
	return model.TaskDraft{
		Title:          defaultTitle,
		Description:    text,
		RequiredSkills: []string{},
		Priority:       model.PriorityMedium,
		TotalHours:     defaultTotalHours,
	}
}
