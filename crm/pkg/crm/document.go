package crm

import (
	"context"

	"crmbridge/tools/logger"
)

const (
	methodDocumentAdd       = "crm.documentgenerator.document.add"
	methodDocumentPublicURL = "crm.documentgenerator.document.enablepublicurl"
)

// CreateDocument 按模板生成文档，返回文档 ID
func (c *Client) CreateDocument(ctx context.Context, templateID, entityTypeID, entityID int64, values map[string]any) (int64, error) {
	resp, err := c.Call(ctx, methodDocumentAdd, Params{
		"templateId":   templateID,
		"entityTypeId": entityTypeID,
		"entityId":     entityID,
		"values":       values,
	})
	if err != nil {
		return 0, err
	}

	if v, ok := resp.Lookup("result", "document", "id"); ok {
		if id, ok := toID(v); ok {
			c.journal.Logf(logger.CategoryCreation, "created document with ID: %d", id)
			return id, nil
		}
	}

	softFailures.WithLabelValues(methodDocumentAdd).Inc()
	c.journal.Logf(logger.CategoryError, "failed to create document from template %d", templateID)
	return 0, ErrNoResult
}

// EnablePublicURL 打开文档的公开链接并返回链接
func (c *Client) EnablePublicURL(ctx context.Context, documentID int64) (string, error) {
	resp, err := c.Call(ctx, methodDocumentPublicURL, Params{
		"id":     documentID,
		"status": 1,
	})
	if err != nil {
		return "", err
	}

	if v, ok := resp.Lookup("result", "publicUrl"); ok {
		if publicURL, ok := v.(string); ok && publicURL != "" {
			c.journal.Logf(logger.CategorySuccess, "public URL for document with ID %d: %s", documentID, publicURL)
			return publicURL, nil
		}
	}

	softFailures.WithLabelValues(methodDocumentPublicURL).Inc()
	c.journal.Logf(logger.CategoryError, "failed to enable public URL for document with ID: %d", documentID)
	return "", ErrNoResult
}
