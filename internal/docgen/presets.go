package docgen

import (
	"errors"
	"fmt"

	"github.com/kmullins/repodoc/pkg/types"
)

// DocType selects one of the built-in documentation presets.
type DocType string

const (
	DocTypeArchitecture DocType = "architecture"
	DocTypeUserStories  DocType = "user-stories"
	DocTypeNarrative    DocType = "narrative"
	DocTypeCustom       DocType = "custom"
)

// Preset errors
var (
	ErrUnknownDocType     = errors.New("unknown documentation type")
	ErrCustomPromptNeeded = errors.New("custom documentation requires a system prompt and template")
)

type preset struct {
	systemPrompt   string
	promptTemplate string
}

var presets = map[DocType]preset{
	DocTypeArchitecture: {
		systemPrompt: "You are a senior software architect. You analyze source code " +
			"and produce clear, accurate architecture documentation in Markdown. " +
			"Describe components, their responsibilities, and how data flows between " +
			"them. Only describe what the code actually does.",
		promptTemplate: "Analyze section " + types.PlaceholderChunkIndex + " of " +
			types.PlaceholderTotalChunks + " of a source repository and document its " +
			"architecture: the components it defines, their responsibilities, and the " +
			"interfaces between them.\n\n" + types.PlaceholderContent,
	},
	DocTypeUserStories: {
		systemPrompt: "You are a product analyst. You read source code and derive " +
			"user stories in the form 'As a <role>, I want <capability>, so that " +
			"<benefit>'. Derive stories only from behavior the code implements.",
		promptTemplate: "Derive user stories from section " + types.PlaceholderChunkIndex +
			" of " + types.PlaceholderTotalChunks + " of a source repository. List each " +
			"story with the code behavior that supports it.\n\n" + types.PlaceholderContent,
	},
	DocTypeNarrative: {
		systemPrompt: "You are a technical writer. You read source code and explain " +
			"what the software does in plain prose for a reader who will not see the " +
			"code. Avoid code identifiers unless they are essential.",
		promptTemplate: "Explain in plain prose what section " + types.PlaceholderChunkIndex +
			" of " + types.PlaceholderTotalChunks + " of this source repository does and " +
			"why a user would care.\n\n" + types.PlaceholderContent,
	},
}

// KnownDocTypes lists the valid documentation types.
func KnownDocTypes() []DocType {
	return []DocType{DocTypeArchitecture, DocTypeUserStories, DocTypeNarrative, DocTypeCustom}
}

// resolvePrompts fills the prompt pair on opts for the given type. For the
// built-in types the preset always wins; custom requires the caller to have
// supplied both fields.
func resolvePrompts(docType DocType, opts *types.ProcessingOptions) error {
	if docType == DocTypeCustom {
		if opts.SystemPrompt == "" || opts.PromptTemplate == "" {
			return ErrCustomPromptNeeded
		}
		return nil
	}

	p, ok := presets[docType]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownDocType, docType)
	}
	opts.SystemPrompt = p.systemPrompt
	opts.PromptTemplate = p.promptTemplate
	return nil
}
