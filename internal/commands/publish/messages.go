package publishcmd

import (
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	convertFileMessageType      = "confluence.convert.file"
	publishFileMessageType      = "confluence.publish.file"
	publishDirectoryMessageType = "confluence.publish.directory"
)

var spaceKeyPattern = regexp.MustCompile(`^[A-Za-z0-9~_-]+$`)

// ConvertFileCommand converts one markdown source into wiki markup.
type ConvertFileCommand struct {
	// Path locates the source, relative to the content directory or absolute.
	Path string `json:"path"`
	// Output receives the rendered markup. Empty writes to the handler writer.
	Output string `json:"output,omitempty"`
}

// Type implements command.Message.
func (ConvertFileCommand) Type() string { return convertFileMessageType }

// Validate ensures a source path is present.
func (cmd ConvertFileCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Path, validation.Required, validation.By(notBlank("confluence.convert.file.path_required", "path is required"))),
	)
}

// PublishFileCommand converts one source and publishes it to its page. Space
// and Title override the values found in the source frontmatter.
type PublishFileCommand struct {
	Path   string   `json:"path"`
	Space  string   `json:"space,omitempty"`
	Title  string   `json:"title,omitempty"`
	Labels []string `json:"labels,omitempty"`
	// Force publishes even when the page content is unchanged.
	Force bool `json:"force,omitempty"`
}

// Type implements command.Message.
func (PublishFileCommand) Type() string { return publishFileMessageType }

// Validate checks the path and, when given, the space key format.
func (cmd PublishFileCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Path, validation.Required, validation.By(notBlank("confluence.publish.file.path_required", "path is required"))),
		validation.Field(&cmd.Space, validation.Match(spaceKeyPattern).Error("space key may only contain letters, digits, '~', '_' and '-'")),
		validation.Field(&cmd.Labels, validation.Each(validation.Required, validation.Length(1, 255))),
	)
}

// PublishDirectoryCommand publishes every source found under Directory.
type PublishDirectoryCommand struct {
	Directory string `json:"directory"`
	Space     string `json:"space,omitempty"`
	Pattern   string `json:"pattern,omitempty"`
	Recursive *bool  `json:"recursive,omitempty"`
	Force     bool   `json:"force,omitempty"`
}

// Type implements command.Message.
func (PublishDirectoryCommand) Type() string { return publishDirectoryMessageType }

// Validate checks the directory and the optional space key.
func (cmd PublishDirectoryCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Directory, validation.Required, validation.By(notBlank("confluence.publish.directory.directory_required", "directory is required"))),
		validation.Field(&cmd.Space, validation.Match(spaceKeyPattern).Error("space key may only contain letters, digits, '~', '_' and '-'")),
	)
}

func notBlank(code, message string) validation.RuleFunc {
	return func(value any) error {
		if s, _ := value.(string); strings.TrimSpace(s) == "" {
			return validation.NewError(code, message)
		}
		return nil
	}
}
