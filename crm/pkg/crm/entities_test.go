package crm

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crmbridge/tools/logger"
)

func TestDealCRUD(t *testing.T) {
	ctx := context.Background()

	t.Run("create", func(t *testing.T) {
		srv := newScriptedServer(t, ok(`{"result":321,"time":{}}`))
		c, j, _ := newTestClient(t, srv)

		id, err := c.CreateDeal(ctx, Fields{"TITLE": "Loan"})
		require.NoError(t, err)
		assert.Equal(t, int64(321), id)
		assert.Equal(t, []string{"created deal with ID: 321"}, j.messages(logger.CategoryCreation))

		calls := srv.calls()
		assert.Equal(t, "/rest/1/secret/crm.deal.add", calls[0].path)
		assert.Equal(t, "Loan", calls[0].form.Get("fields[TITLE]"))
	})

	t.Run("create without result", func(t *testing.T) {
		srv := newScriptedServer(t, ok(`{"time":{}}`))
		c, j, _ := newTestClient(t, srv)

		_, err := c.CreateDeal(ctx, Fields{"TITLE": "Loan"})
		assert.ErrorIs(t, err, ErrNoResult)
		assert.Equal(t, []string{"failed to create deal"}, j.messages(logger.CategoryError))
	})

	t.Run("update", func(t *testing.T) {
		srv := newScriptedServer(t, ok(`{"result":true}`))
		c, j, _ := newTestClient(t, srv)

		updated, err := c.UpdateDeal(ctx, 9, Fields{"STAGE_ID": "WON"})
		require.NoError(t, err)
		assert.True(t, updated)
		assert.Equal(t, []string{"updated deal with ID: 9"}, j.messages(logger.CategoryUpdate))
		assert.Equal(t, "9", srv.calls()[0].form.Get("id"))
		assert.Equal(t, "WON", srv.calls()[0].form.Get("fields[STAGE_ID]"))
	})

	t.Run("update rejected", func(t *testing.T) {
		srv := newScriptedServer(t, ok(`{"result":false}`))
		c, j, _ := newTestClient(t, srv)

		updated, err := c.UpdateDeal(ctx, 9, Fields{"STAGE_ID": "WON"})
		require.NoError(t, err)
		assert.False(t, updated)
		assert.Equal(t, []string{"failed to update deal with ID: 9"}, j.messages(logger.CategoryError))
	})

	t.Run("delete", func(t *testing.T) {
		srv := newScriptedServer(t, ok(`{"result":true}`))
		c, j, _ := newTestClient(t, srv)

		deleted, err := c.DeleteDeal(ctx, 9)
		require.NoError(t, err)
		assert.True(t, deleted)
		assert.Equal(t, []string{"deleted deal with ID: 9"}, j.messages(logger.CategorySuccess))
	})

	t.Run("get", func(t *testing.T) {
		srv := newScriptedServer(t, ok(`{"result":{"ID":"9","TITLE":"Loan"}}`))
		c, _, _ := newTestClient(t, srv)

		rec, err := c.GetDeal(ctx, 9)
		require.NoError(t, err)
		assert.Equal(t, Record{"ID": "9", "TITLE": "Loan"}, rec)
	})

	t.Run("get missing", func(t *testing.T) {
		srv := newScriptedServer(t, ok(`{"result":null}`))
		c, j, _ := newTestClient(t, srv)

		rec, err := c.GetDeal(ctx, 9)
		assert.ErrorIs(t, err, ErrNoResult)
		assert.Nil(t, rec)
		assert.Equal(t, []string{"failed to get deal with ID: 9"}, j.messages(logger.CategoryError))
	})

	t.Run("list", func(t *testing.T) {
		srv := newScriptedServer(t, ok(`{"result":[{"ID":"1"},{"ID":"2"}],"next":50,"total":120}`))
		c, _, _ := newTestClient(t, srv)

		recs, err := c.ListDeals(ctx, ListRequest{
			Filter: map[string]any{"STAGE_ID": "NEW"},
			Select: []string{"ID"},
			Start:  50,
		})
		require.NoError(t, err)
		assert.Equal(t, []Record{{"ID": "1"}, {"ID": "2"}}, recs)

		form := srv.calls()[0].form
		assert.Equal(t, "NEW", form.Get("filter[STAGE_ID]"))
		assert.Equal(t, "ID", form.Get("select[0]"))
		assert.Equal(t, "50", form.Get("start"))
	})

	t.Run("list empty", func(t *testing.T) {
		srv := newScriptedServer(t, ok(`{"result":[],"total":0}`))
		c, j, _ := newTestClient(t, srv)

		recs, err := c.ListDeals(ctx, ListRequest{})
		require.NoError(t, err)
		assert.Empty(t, recs)
		assert.Equal(t, 0, j.count(logger.CategoryError))
	})

	t.Run("hard failure propagates", func(t *testing.T) {
		srv := newScriptedServer(t, reply{status: http.StatusUnauthorized, body: `{"error":"expired_token"}`})
		c, j, _ := newTestClient(t, srv)

		_, err := c.CreateDeal(ctx, Fields{})
		var callErr *CallError
		require.ErrorAs(t, err, &callErr)
		assert.Equal(t, 3, j.count(logger.CategoryError))
		assert.Equal(t, 0, j.count(logger.CategoryCreation))
	})
}

func TestContactOperationsUseContactMethods(t *testing.T) {
	ctx := context.Background()
	srv := newScriptedServer(t,
		ok(`{"result":77}`),
		ok(`{"result":true}`),
		ok(`{"result":true}`),
		ok(`{"result":{"ID":"77"}}`),
		ok(`{"result":[{"ID":"77"}]}`),
	)
	c, j, _ := newTestClient(t, srv)

	id, err := c.CreateContact(ctx, Fields{"NAME": "Aigerim"})
	require.NoError(t, err)
	assert.Equal(t, int64(77), id)

	_, err = c.UpdateContact(ctx, id, Fields{"NAME": "Aigerim"})
	require.NoError(t, err)
	_, err = c.DeleteContact(ctx, id)
	require.NoError(t, err)
	_, err = c.GetContact(ctx, id)
	require.NoError(t, err)
	_, err = c.ListContacts(ctx, ListRequest{Filter: map[string]any{"PHONE": "77011234567"}})
	require.NoError(t, err)

	var paths []string
	for _, call := range srv.calls() {
		paths = append(paths, call.path)
	}
	assert.Equal(t, []string{
		"/rest/1/secret/crm.contact.add",
		"/rest/1/secret/crm.contact.update",
		"/rest/1/secret/crm.contact.delete",
		"/rest/1/secret/crm.contact.get",
		"/rest/1/secret/crm.contact.list",
	}, paths)
	assert.Equal(t, []string{"created contact with ID: 77"}, j.messages(logger.CategoryCreation))
}

func TestItemOperations(t *testing.T) {
	ctx := context.Background()

	t.Run("create reads nested id", func(t *testing.T) {
		srv := newScriptedServer(t, ok(`{"result":{"item":{"id":12,"title":"Request"}}}`))
		c, j, _ := newTestClient(t, srv)

		id, err := c.CreateItem(ctx, 1032, Fields{"title": "Request"})
		require.NoError(t, err)
		assert.Equal(t, int64(12), id)
		assert.Equal(t, "1032", srv.calls()[0].form.Get("entityTypeId"))
		assert.Equal(t, []string{"created item with ID: 12"}, j.messages(logger.CategoryCreation))
	})

	t.Run("entity type omitted when zero", func(t *testing.T) {
		srv := newScriptedServer(t, ok(`{"result":{"item":{"id":12}}}`))
		c, _, _ := newTestClient(t, srv)

		_, err := c.GetItem(ctx, 0, 12)
		require.NoError(t, err)
		_, present := srv.calls()[0].form["entityTypeId"]
		assert.False(t, present)
	})

	t.Run("update needs item id", func(t *testing.T) {
		srv := newScriptedServer(t, ok(`{"result":{"item":{"id":12}}}`), ok(`{"result":{}}`))
		c, _, _ := newTestClient(t, srv)

		updated, err := c.UpdateItem(ctx, 1032, 12, Fields{"title": "x"})
		require.NoError(t, err)
		assert.True(t, updated)

		updated, err = c.UpdateItem(ctx, 1032, 12, Fields{"title": "x"})
		require.NoError(t, err)
		assert.False(t, updated)
	})

	t.Run("delete accepts empty result", func(t *testing.T) {
		srv := newScriptedServer(t, ok(`{"result":[]}`))
		c, j, _ := newTestClient(t, srv)

		deleted, err := c.DeleteItem(ctx, 1032, 12)
		require.NoError(t, err)
		assert.True(t, deleted)
		assert.Equal(t, []string{"deleted item with ID: 12"}, j.messages(logger.CategorySuccess))
	})

	t.Run("get and list unwrap item envelopes", func(t *testing.T) {
		srv := newScriptedServer(t,
			ok(`{"result":{"item":{"id":12}}}`),
			ok(`{"result":{"items":[{"id":12},{"id":13}]}}`),
			ok(`{"result":{}}`),
		)
		c, j, _ := newTestClient(t, srv)

		rec, err := c.GetItem(ctx, 1032, 12)
		require.NoError(t, err)
		assert.Equal(t, Record{"id": float64(12)}, rec)

		recs, err := c.ListItems(ctx, 1032, ListRequest{})
		require.NoError(t, err)
		assert.Len(t, recs, 2)

		_, err = c.ListItems(ctx, 1032, ListRequest{})
		assert.ErrorIs(t, err, ErrNoResult)
		assert.Equal(t, []string{"failed to list items"}, j.messages(logger.CategoryError))
	})
}

func TestDocuments(t *testing.T) {
	ctx := context.Background()

	t.Run("create document", func(t *testing.T) {
		srv := newScriptedServer(t, ok(`{"result":{"document":{"id":"501","title":"Contract"}}}`))
		c, j, _ := newTestClient(t, srv)

		id, err := c.CreateDocument(ctx, 3, 2, 9, map[string]any{"ClientName": "Aigerim"})
		require.NoError(t, err)
		assert.Equal(t, int64(501), id)

		call := srv.calls()[0]
		assert.Equal(t, "/rest/1/secret/crm.documentgenerator.document.add", call.path)
		assert.Equal(t, "3", call.form.Get("templateId"))
		assert.Equal(t, "2", call.form.Get("entityTypeId"))
		assert.Equal(t, "9", call.form.Get("entityId"))
		assert.Equal(t, "Aigerim", call.form.Get("values[ClientName]"))
		assert.Equal(t, []string{"created document with ID: 501"}, j.messages(logger.CategoryCreation))
	})

	t.Run("create document without id", func(t *testing.T) {
		srv := newScriptedServer(t, ok(`{"result":{"document":{}}}`))
		c, _, _ := newTestClient(t, srv)

		_, err := c.CreateDocument(ctx, 3, 2, 9, nil)
		assert.ErrorIs(t, err, ErrNoResult)
	})

	t.Run("enable public url", func(t *testing.T) {
		srv := newScriptedServer(t, ok(`{"result":{"publicUrl":"https://crm.example.kz/pub/doc/abc"}}`))
		c, j, _ := newTestClient(t, srv)

		publicURL, err := c.EnablePublicURL(ctx, 501)
		require.NoError(t, err)
		assert.Equal(t, "https://crm.example.kz/pub/doc/abc", publicURL)

		call := srv.calls()[0]
		assert.Equal(t, "/rest/1/secret/crm.documentgenerator.document.enablepublicurl", call.path)
		assert.Equal(t, "501", call.form.Get("id"))
		assert.Equal(t, "1", call.form.Get("status"))
		assert.Len(t, j.messages(logger.CategorySuccess), 1)
	})

	t.Run("public url missing", func(t *testing.T) {
		srv := newScriptedServer(t, ok(`{"result":{}}`))
		c, j, _ := newTestClient(t, srv)

		publicURL, err := c.EnablePublicURL(ctx, 501)
		assert.ErrorIs(t, err, ErrNoResult)
		assert.Empty(t, publicURL)
		assert.Equal(t, []string{"failed to enable public URL for document with ID: 501"}, j.messages(logger.CategoryError))
	})
}
