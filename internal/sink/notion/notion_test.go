package notion

import (
	"context"
	"testing"
	"time"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadsync/internal/model"
	notionmocks "github.com/sells-group/leadsync/pkg/notion/mocks"
)

func identifierPage(id string) notionapi.Page {
	return notionapi.Page{
		Properties: notionapi.Properties{
			identifierProperty: &notionapi.RichTextProperty{
				RichText: []notionapi.RichText{{PlainText: id}},
			},
		},
	}
}

func TestSeenIDsPaginates(t *testing.T) {
	ctx := context.Background()
	client := notionmocks.NewMockClient(t)

	client.On("QueryDatabase", ctx, "db-1", mock.MatchedBy(func(req *notionapi.DatabaseQueryRequest) bool {
		return req.StartCursor == ""
	})).Return(&notionapi.DatabaseQueryResponse{
		Results:    []notionapi.Page{identifierPage("<a@x>"), identifierPage("")},
		HasMore:    true,
		NextCursor: "cur-2",
	}, nil).Once()

	client.On("QueryDatabase", ctx, "db-1", mock.MatchedBy(func(req *notionapi.DatabaseQueryRequest) bool {
		return req.StartCursor == notionapi.Cursor("cur-2")
	})).Return(&notionapi.DatabaseQueryResponse{
		Results: []notionapi.Page{identifierPage("<b@x>")},
		HasMore: false,
	}, nil).Once()

	s := New(client, "db-1")
	seen, err := s.SeenIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{
		"<a@x>": {},
		"<b@x>": {},
	}, seen)
}

func TestSeenIDsIgnoresForeignPropertyTypes(t *testing.T) {
	ctx := context.Background()
	client := notionmocks.NewMockClient(t)

	client.On("QueryDatabase", ctx, "db-1", mock.Anything).Return(&notionapi.DatabaseQueryResponse{
		Results: []notionapi.Page{{
			Properties: notionapi.Properties{
				identifierProperty: &notionapi.TitleProperty{},
			},
		}},
	}, nil)

	s := New(client, "db-1")
	seen, err := s.SeenIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, seen)
}

func TestSeenIDsQueryError(t *testing.T) {
	ctx := context.Background()
	client := notionmocks.NewMockClient(t)
	client.On("QueryDatabase", ctx, "db-1", mock.Anything).Return(nil, assert.AnError)

	s := New(client, "db-1")
	_, err := s.SeenIDs(ctx)
	assert.Error(t, err)
}

func TestAppendBuildsPage(t *testing.T) {
	ctx := context.Background()
	client := notionmocks.NewMockClient(t)

	client.On("CreatePage", ctx, mock.MatchedBy(func(req *notionapi.PageCreateRequest) bool {
		if req.Parent.DatabaseID != notionapi.DatabaseID("db-1") {
			return false
		}
		title, ok := req.Properties["Name"].(notionapi.TitleProperty)
		if !ok || title.Title[0].Text.Content != "Amit Shah" {
			return false
		}
		phone, ok := req.Properties["Phone"].(notionapi.RichTextProperty)
		if !ok || phone.RichText[0].Text.Content != model.Unknown {
			return false
		}
		sel, ok := req.Properties["Status"].(notionapi.SelectProperty)
		if !ok || sel.Select.Name != model.StatusNew {
			return false
		}
		uid, ok := req.Properties[identifierProperty].(notionapi.RichTextProperty)
		return ok && uid.RichText[0].Text.Content == "<abc@mail.example>"
	})).Return(&notionapi.Page{ID: "new-page"}, nil)

	s := New(client, "db-1")
	err := s.Append(ctx, model.Record{
		Fields: model.Fields{
			Name:    model.KnownField("Amit Shah"),
			Product: model.KnownField("Industrial Valves"),
		},
		ProcessedAt: time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC),
		Status:      model.StatusNew,
		UID:         "<abc@mail.example>",
	})
	assert.NoError(t, err)
}

func TestAppendError(t *testing.T) {
	ctx := context.Background()
	client := notionmocks.NewMockClient(t)
	client.On("CreatePage", ctx, mock.Anything).Return(nil, assert.AnError)

	s := New(client, "db-1")
	err := s.Append(ctx, model.Record{UID: "<x@y>"})
	assert.Error(t, err)
}
