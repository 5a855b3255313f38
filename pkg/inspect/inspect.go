// Package inspect summarizes AsyncAPI documents: their operations, channels and messages.
// It is used to check what a catalog will see after a document was rewritten.
package inspect

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/lerenn/asyncapi-codegen/pkg/asyncapi/parser"
	asyncapiv3 "github.com/lerenn/asyncapi-codegen/pkg/asyncapi/v3"
	"golang.org/x/sync/errgroup"
)

// Summary describes one AsyncAPI document.
type Summary struct {
	Path        string      `json:"path"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Operations  []Operation `json:"operations"`
}

// Operation is an action on a channel carrying a message, optionally with a reply.
type Operation struct {
	Action  string   `json:"action"`
	Channel Channel  `json:"channel"`
	Reply   *Channel `json:"reply,omitempty"`
}

// Channel is a channel address with the name of the message it carries.
type Channel struct {
	Address string `json:"address"`
	Message string `json:"message"`
}

// Load summarizes the documents at paths concurrently. Summaries are sorted by title.
func Load(ctx context.Context, paths []string) ([]Summary, error) {
	summaries := make([]Summary, len(paths))

	g, ctx := errgroup.WithContext(ctx)

	for i, path := range paths {
		trimmedPath := strings.TrimSpace(path)

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			s, err := File(trimmedPath)
			if err != nil {
				return fmt.Errorf("error inspecting %s: %w", trimmedPath, err)
			}

			summaries[i] = s

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].Title < summaries[j].Title
	})

	return summaries, nil
}

// File summarizes the document at path.
func File(path string) (Summary, error) {
	doc, err := parser.FromFile(parser.FromFileParams{Path: path})
	if err != nil {
		return Summary{}, fmt.Errorf("error reading document: %w", err)
	}

	if err := doc.Process(); err != nil {
		return Summary{}, fmt.Errorf("error resolving document references: %w", err)
	}

	// v2 documents are upgraded so operations and replies are read one way
	v3, err := asyncapiv3.FromUnknownVersion(doc)
	if err != nil {
		return Summary{}, fmt.Errorf("error upgrading document to AsyncAPI v3: %w", err)
	}

	summary := Summary{
		Path:        path,
		Title:       v3.Info.Title,
		Description: v3.Info.Description,
		Operations:  make([]Operation, 0, len(v3.Operations)),
	}

	for _, op := range v3.Operations {
		if operation := createOperation(op); operation != nil {
			summary.Operations = append(summary.Operations, *operation)
		}
	}

	sort.Slice(summary.Operations, func(i, j int) bool {
		a, b := summary.Operations[i], summary.Operations[j]
		if a.Channel.Address != b.Channel.Address {
			return a.Channel.Address < b.Channel.Address
		}
		return a.Action < b.Action
	})

	return summary, nil
}

func createOperation(op *asyncapiv3.Operation) *Operation {
	channel := op.Channel.Follow()
	if channel == nil {
		return nil
	}

	operation := Operation{
		Action: string(op.Action),
		Channel: Channel{
			Address: channel.Address,
			Message: messageName(op.Messages, channel),
		},
	}

	if op.Reply != nil {
		if replyChannel := op.Reply.Channel.Follow(); replyChannel != nil {
			operation.Reply = &Channel{
				Address: replyChannel.Address,
				Message: messageName(op.Reply.Messages, replyChannel),
			}
		}
	}

	return &operation
}

// messageName returns the name of the first message, falling back to its key in the
// channel's message map.
func messageName(messages []*asyncapiv3.Message, channel *asyncapiv3.Channel) string {
	if len(messages) > 0 && messages[0] != nil {
		msg := messages[0]
		for msg.ReferenceTo != nil {
			msg = msg.ReferenceTo
		}

		if msg.Name != "" {
			return msg.Name
		}
	}

	names := make([]string, 0, len(channel.Messages))
	for name := range channel.Messages {
		names = append(names, name)
	}
	sort.Strings(names)

	if len(names) == 0 {
		return ""
	}

	return names[0]
}
