package publishcmd

import (
	"testing"

	command "github.com/goliatone/go-command"
)

func TestMessageTypes(t *testing.T) {
	cases := map[string]command.Message{
		"confluence.convert.file":      ConvertFileCommand{},
		"confluence.publish.file":      PublishFileCommand{},
		"confluence.publish.directory": PublishDirectoryCommand{},
	}
	for want, msg := range cases {
		if got := command.GetMessageType(msg); got != want {
			t.Fatalf("expected type %q, got %q", want, got)
		}
	}
}

func TestConvertFileCommandValidate(t *testing.T) {
	if err := (ConvertFileCommand{Path: "guide.md"}).Validate(); err != nil {
		t.Fatalf("expected valid command, got %v", err)
	}
	for _, path := range []string{"", "   "} {
		if err := (ConvertFileCommand{Path: path}).Validate(); err == nil {
			t.Fatalf("expected error for path %q", path)
		}
	}
}

func TestPublishFileCommandValidate(t *testing.T) {
	valid := PublishFileCommand{Path: "guide.md", Space: "ENG", Labels: []string{"docs"}}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid command, got %v", err)
	}
	if err := (PublishFileCommand{Path: "guide.md"}).Validate(); err != nil {
		t.Fatalf("space should be optional, got %v", err)
	}

	invalid := []PublishFileCommand{
		{},
		{Path: "guide.md", Space: "has space"},
		{Path: "guide.md", Labels: []string{""}},
	}
	for _, cmd := range invalid {
		if err := cmd.Validate(); err == nil {
			t.Fatalf("expected validation error for %+v", cmd)
		}
	}
}

func TestPublishDirectoryCommandValidate(t *testing.T) {
	if err := (PublishDirectoryCommand{Directory: "docs", Space: "~personal"}).Validate(); err != nil {
		t.Fatalf("expected valid command, got %v", err)
	}
	if err := (PublishDirectoryCommand{Space: "ENG"}).Validate(); err == nil {
		t.Fatal("expected error for missing directory")
	}
	if err := (PublishDirectoryCommand{Directory: "docs", Space: "a/b"}).Validate(); err == nil {
		t.Fatal("expected error for invalid space")
	}
}
