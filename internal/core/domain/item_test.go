package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestItem_Fields(t *testing.T) {
	item := Item{
		SourceID:    "addressbook",
		LUID:        LUID("123"),
		ContentType: ContentTypeVCard,
		Content:     []byte("BEGIN:VCARD\nEND:VCARD"),
		Revision:    Revision("rev-1"),
	}

	assert.Equal(t, "addressbook", item.SourceID)
	assert.Equal(t, LUID("123"), item.LUID)
	assert.Equal(t, ContentTypeVCard, item.ContentType)
	assert.Contains(t, string(item.Content), "VCARD")
	assert.False(t, item.Revision.IsEmpty())
}

func TestItemChange_DeletedHasNoItem(t *testing.T) {
	c := ItemChange{State: Deleted, LUID: LUID("123")}

	assert.Equal(t, Deleted, c.State)
	assert.Nil(t, c.Item)
}

func TestItemChange_NewCarriesItem(t *testing.T) {
	item := &Item{SourceID: "calendar", LUID: LUID("456"), ContentType: ContentTypeICalendar}
	c := ItemChange{State: New, LUID: LUID("456"), Item: item}

	assert.Equal(t, New, c.State)
	assert.Same(t, item, c.Item)
}

func TestInsertResult_MergedDupe(t *testing.T) {
	r := InsertResult{LUID: LUID("789"), Revision: Revision("rev-2"), MergedDupe: true}

	assert.Equal(t, LUID("789"), r.LUID)
	assert.True(t, r.MergedDupe)
}

func TestContentType_Values(t *testing.T) {
	assert.Equal(t, ContentType("text/vcard"), ContentTypeVCard)
	assert.Equal(t, ContentType("text/calendar"), ContentTypeICalendar)
	assert.Equal(t, ContentType("text/plain"), ContentTypeText)
}
