package asyncapi

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holydocs/ceprep"
	"github.com/holydocs/ceprep/pkg/document"
)

func parse(t *testing.T, s string) document.Object {
	t.Helper()

	obj, err := document.Parse([]byte(s))
	require.NoError(t, err)

	return obj
}

func marshal(t *testing.T, v any) string {
	t.Helper()

	obj, ok := document.AsObject(v)
	require.True(t, ok)

	data, err := document.Marshal(obj)
	require.NoError(t, err)

	return string(data)
}

func discardLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected MajorVersion
		wantErr  bool
	}{
		{input: `{"asyncapi":"2.0.0"}`, expected: V2},
		{input: `{"asyncapi":"2.6.0"}`, expected: V2},
		{input: `{"asyncapi":"3.0.0"}`, expected: V3},
		{input: `{"asyncapi":"1.2.0"}`, wantErr: true},
		{input: `{}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			v, err := Version(parse(t, tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, v)
		})
	}
}

func TestRequireVersion(t *testing.T) {
	t.Parallel()

	assert.NoError(t, RequireVersion(parse(t, `{"asyncapi":"2.0.0"}`), ImportVersion))

	err := RequireVersion(parse(t, `{"asyncapi":"2.6.0"}`), ImportVersion)

	var versionErr *ceprep.UnsupportedVersionError
	assert.ErrorAs(t, err, &versionErr)
}

func TestPrefixChannels(t *testing.T) {
	t.Parallel()

	t.Run("prefixes in order", func(t *testing.T) {
		t.Parallel()

		doc := parse(t, `{"channels":{"orders/created":{"x":1},"orders/deleted":{}}}`)

		outcomes, err := PrefixChannels(doc, "shop")
		require.NoError(t, err)
		require.Len(t, outcomes, 2)

		channels, _ := document.GetObject(doc, "channels")
		assert.Equal(t, []string{"shop/orders/created", "shop/orders/deleted"}, document.Keys(channels))
		assert.Equal(t, `{"channels":{"shop/orders/created":{"x":1},"shop/orders/deleted":{}}}`, marshal(t, doc))
	})

	t.Run("namespace with slash", func(t *testing.T) {
		t.Parallel()

		doc := parse(t, `{"channels":{"a":{}}}`)

		_, err := PrefixChannels(doc, "ns/")
		require.NoError(t, err)
		assert.Equal(t, `{"channels":{"ns/a":{}}}`, marshal(t, doc))
	})

	t.Run("empty namespace", func(t *testing.T) {
		t.Parallel()

		doc := parse(t, `{}`)

		outcomes, err := PrefixChannels(doc, "")
		require.NoError(t, err)
		assert.Empty(t, outcomes)
	})

	t.Run("missing channels", func(t *testing.T) {
		t.Parallel()

		_, err := PrefixChannels(parse(t, `{}`), "ns")

		var notFound *ceprep.ComponentNotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "channels", notFound.Name())
	})
}

func TestAssignDescription(t *testing.T) {
	t.Parallel()

	doc := parse(t, `{"info":{"title":"T","version":"1"}}`)
	require.NoError(t, AssignDescription(doc, "hello"))
	assert.Equal(t, `{"info":{"title":"T","version":"1","description":"hello"}}`, marshal(t, doc))

	doc = parse(t, `{"info":{"description":"old","title":"T"}}`)
	require.NoError(t, AssignDescription(doc, "new"))
	assert.Equal(t, `{"info":{"description":"new","title":"T"}}`, marshal(t, doc))

	assert.ErrorContains(t, AssignDescription(parse(t, `{}`), "x"), "does not contain an info object")
}

func TestMessageName(t *testing.T) {
	t.Parallel()

	doc := parse(t, `{"components":{
		"schemas":{
			"Created":{"type":"object","properties":{"type":{"const":"order.created"}}},
			"Alias":{"$ref":"#/components/schemas/Created"},
			"Untyped":{"type":"object","properties":{"id":{}}},
			"Numbered":{"type":"object","properties":{"type":{"const":42}}},
			"Flagged":{"type":"object","properties":{"type":{"const":true}}},
			"Zero":{"type":"object","properties":{"type":{"const":0}}},
			"Empty":{"type":"object","properties":{"type":{"const":""}}},
			"Structured":{"type":"object","properties":{"type":{"const":{"a":1}}}}
		},
		"messages":{}
	}}`)

	tests := []struct {
		name     string
		message  string
		expected string
		errMsg   string
		refErr   bool
	}{
		{
			name:     "from payload schema",
			message:  `{"payload":{"$ref":"#/components/schemas/Created"}}`,
			expected: "order.created",
		},
		{
			name:    "message reference",
			message: `{"$ref":"#/components/messages/Other"}`,
			refErr:  true,
		},
		{
			name:    "no payload reference",
			message: `{"payload":{"type":"object"}}`,
			errMsg:  "message M has no reference to a payload defined",
		},
		{
			name:    "unknown schema",
			message: `{"payload":{"$ref":"#/components/schemas/Missing"}}`,
			errMsg:  "schema Missing not found in components.schemas",
		},
		{
			name:    "schema reference",
			message: `{"payload":{"$ref":"#/components/schemas/Alias"}}`,
			refErr:  true,
		},
		{
			name:    "no type const",
			message: `{"payload":{"$ref":"#/components/schemas/Untyped"}}`,
			errMsg:  "schema Untyped has no type defined",
		},
		{
			name:     "numeric type const",
			message:  `{"payload":{"$ref":"#/components/schemas/Numbered"}}`,
			expected: "42",
		},
		{
			name:     "boolean type const",
			message:  `{"payload":{"$ref":"#/components/schemas/Flagged"}}`,
			expected: "true",
		},
		{
			name:    "zero type const",
			message: `{"payload":{"$ref":"#/components/schemas/Zero"}}`,
			errMsg:  "schema Zero has no type defined",
		},
		{
			name:    "empty type const",
			message: `{"payload":{"$ref":"#/components/schemas/Empty"}}`,
			errMsg:  "schema Empty has no type defined",
		},
		{
			name:    "structured type const",
			message: `{"payload":{"$ref":"#/components/schemas/Structured"}}`,
			errMsg:  "schema Structured has no type defined",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			name, err := MessageName(doc, parse(t, tt.message), "M")

			switch {
			case tt.refErr:
				var refErr *ceprep.ReferenceNotSupportedError
				assert.ErrorAs(t, err, &refErr)
			case tt.errMsg != "":
				assert.EqualError(t, err, tt.errMsg)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.expected, name)
			}
		})
	}
}

func TestMessageNameWithoutSchemas(t *testing.T) {
	t.Parallel()

	doc := parse(t, `{"components":{"messages":{}}}`)

	_, err := MessageName(doc, parse(t, `{"payload":{"$ref":"#/components/schemas/A"}}`), "M")

	var notFound *ceprep.ComponentNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "schemas", notFound.Name())
}

func TestAssigner(t *testing.T) {
	t.Parallel()

	doc := parse(t, `{"components":{
		"schemas":{
			"Created":{"type":"object","properties":{"type":{"const":"order.created"}}},
			"Untyped":{"type":"object","properties":{}}
		},
		"messages":{
			"OrderCreated":{"payload":{"$ref":"#/components/schemas/Created"}},
			"Linked":{"$ref":"#/components/messages/OrderCreated"},
			"Broken":{"payload":{"$ref":"#/components/schemas/Untyped"}}
		}
	}}`)

	assigner, err := NewAssigner(doc, discardLogger())
	require.NoError(t, err)

	names := assigner.AssignNames()
	headers := assigner.AssignHeaders()
	traits := assigner.AssignTraits()

	assert.Equal(t, map[string]string{"OrderCreated": "order.created"}, assigner.Names())

	statuses := func(outcomes []ceprep.Outcome) []ceprep.Status {
		out := make([]ceprep.Status, 0, len(outcomes))
		for _, o := range outcomes {
			out = append(out, o.Status)
		}
		return out
	}

	assert.Equal(t, []ceprep.Status{ceprep.StatusOK, ceprep.StatusSkipped, ceprep.StatusSkipped}, statuses(names))
	assert.Equal(t, []ceprep.Status{ceprep.StatusOK, ceprep.StatusSkipped, ceprep.StatusSkipped}, statuses(headers))
	assert.Equal(t, []ceprep.Status{ceprep.StatusOK, ceprep.StatusSkipped, ceprep.StatusOK}, statuses(traits))
	assert.Equal(t, "components.messages.Linked", names[1].Path)

	created, _ := document.Lookup(doc, "components", "messages", "OrderCreated")
	assert.JSONEq(t, `{
		"payload":{"$ref":"#/components/schemas/Created"},
		"name":"order.created",
		"headers":{"properties":{"type":{"const":"order.created"},"datacontenttype":{"const":"application/json"}}},
		"traits":[{"$ref":"#/components/messageTraits/CloudEventContext"}]
	}`, marshal(t, created))

	broken, _ := document.Lookup(doc, "components", "messages", "Broken")
	assert.JSONEq(t, `{
		"payload":{"$ref":"#/components/schemas/Untyped"},
		"traits":[{"$ref":"#/components/messageTraits/CloudEventContext"}]
	}`, marshal(t, broken))

	linked, _ := document.Lookup(doc, "components", "messages", "Linked")
	assert.JSONEq(t, `{"$ref":"#/components/messages/OrderCreated"}`, marshal(t, linked))
}

func TestNewAssignerMissingMessages(t *testing.T) {
	t.Parallel()

	_, err := NewAssigner(parse(t, `{"components":{}}`), discardLogger())

	var notFound *ceprep.ComponentNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "messages", notFound.Name())
}
