// Package notion persists lead records to a Notion database.
//
// The database is expected to have a "Name" title property, rich-text
// properties for the remaining lead fields, a "Status" select, and a
// "Processed At" date. The "Message ID" rich-text property doubles as the
// duplicate-detection identifier column.
package notion

import (
	"context"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"

	"github.com/sells-group/leadsync/internal/model"
	"github.com/sells-group/leadsync/internal/sink"
	"github.com/sells-group/leadsync/pkg/notion"
)

const identifierProperty = "Message ID"

// Sink writes lead records as pages of a Notion database.
type Sink struct {
	client     notion.Client
	databaseID string
}

// New creates a Notion-backed sink targeting the given database.
func New(client notion.Client, databaseID string) *Sink {
	return &Sink{client: client, databaseID: databaseID}
}

var _ sink.Sink = (*Sink)(nil)

// SeenIDs pages through the database and collects every non-empty value of
// the identifier property.
func (s *Sink) SeenIDs(ctx context.Context) (map[string]struct{}, error) {
	seen := make(map[string]struct{})
	req := &notionapi.DatabaseQueryRequest{PageSize: 100}
	for {
		resp, err := s.client.QueryDatabase(ctx, s.databaseID, req)
		if err != nil {
			return nil, eris.Wrap(err, "notion sink: list seen identifiers")
		}
		for _, page := range resp.Results {
			if id := richTextValue(page.Properties[identifierProperty]); id != "" {
				seen[id] = struct{}{}
			}
		}
		if !resp.HasMore {
			return seen, nil
		}
		req.StartCursor = notionapi.Cursor(resp.NextCursor)
	}
}

// Append creates one page for the record.
func (s *Sink) Append(ctx context.Context, rec model.Record) error {
	processed := notionapi.Date(rec.ProcessedAt)
	_, err := s.client.CreatePage(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(s.databaseID),
		},
		Properties: notionapi.Properties{
			"Name": notionapi.TitleProperty{
				Title: richText(rec.Name.Or()),
			},
			"Phone":   textProperty(rec.Phone.Or()),
			"Email":   textProperty(rec.Email.Or()),
			"Product": textProperty(rec.Product.Or()),
			"Status": notionapi.SelectProperty{
				Select: notionapi.Option{Name: rec.Status},
			},
			"Processed At": notionapi.DateProperty{
				Date: &notionapi.DateObject{Start: &processed},
			},
			identifierProperty: textProperty(rec.UID),
		},
	})
	if err != nil {
		return eris.Wrap(err, "notion sink: append record")
	}
	return nil
}

func richText(s string) []notionapi.RichText {
	return []notionapi.RichText{{
		Type: notionapi.ObjectTypeText,
		Text: &notionapi.Text{Content: s},
	}}
}

func textProperty(s string) notionapi.RichTextProperty {
	return notionapi.RichTextProperty{RichText: richText(s)}
}

// richTextValue extracts the concatenated plain text of a rich-text property,
// or "" when the property is absent or of another type.
func richTextValue(prop notionapi.Property) string {
	rtp, ok := prop.(*notionapi.RichTextProperty)
	if !ok {
		return ""
	}
	var out string
	for _, rt := range rtp.RichText {
		out += rt.PlainText
	}
	return out
}
