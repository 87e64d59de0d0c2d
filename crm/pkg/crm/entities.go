package crm

import (
	"context"
	"fmt"

	"crmbridge/tools/logger"
)

// EntityKind CRM 实体类型
type EntityKind string

const (
	KindDeal    EntityKind = "deal"
	KindContact EntityKind = "contact"
	KindItem    EntityKind = "item"
)

// Fields 实体字段
type Fields map[string]any

// ListRequest 列表查询，Start 原样透传给 CRM
type ListRequest struct {
	Filter map[string]any `json:"filter"`
	Select []string       `json:"select"`
	Start  int            `json:"start"`
}

func (r ListRequest) params() Params {
	return Params{
		"filter": r.Filter,
		"select": r.Select,
		"start":  r.Start,
	}
}

func (k EntityKind) method(action string) string {
	return fmt.Sprintf("crm.%s.%s", k, action)
}

// 各实体的响应形状
type shape struct {
	createdID []string
	updated   func(Response) bool
	deleted   func(Response) bool
	record    []string
	records   []string
}

func resultIsTrue(r Response) bool {
	v, ok := r.Result()
	b, isBool := v.(bool)
	return ok && isBool && b
}

func has(path ...string) func(Response) bool {
	return func(r Response) bool {
		_, ok := r.Lookup(path...)
		return ok
	}
}

var shapes = map[EntityKind]shape{
	KindDeal: {
		createdID: []string{"result"},
		updated:   resultIsTrue,
		deleted:   resultIsTrue,
		record:    []string{"result"},
		records:   []string{"result"},
	},
	KindContact: {
		createdID: []string{"result"},
		updated:   resultIsTrue,
		deleted:   resultIsTrue,
		record:    []string{"result"},
		records:   []string{"result"},
	},
	KindItem: {
		createdID: []string{"result", "item", "id"},
		updated:   has("result", "item", "id"),
		deleted:   has("result"),
		record:    []string{"result", "item"},
		records:   []string{"result", "items"},
	},
}

func (c *Client) create(ctx context.Context, kind EntityKind, params Params) (int64, error) {
	method := kind.method("add")
	resp, err := c.Call(ctx, method, params)
	if err != nil {
		return 0, err
	}

	if v, ok := resp.Lookup(shapes[kind].createdID...); ok {
		if id, ok := toID(v); ok {
			c.journal.Logf(logger.CategoryCreation, "created %s with ID: %d", kind, id)
			return id, nil
		}
	}

	softFailures.WithLabelValues(method).Inc()
	c.journal.Logf(logger.CategoryError, "failed to create %s", kind)
	return 0, ErrNoResult
}

func (c *Client) update(ctx context.Context, kind EntityKind, id int64, params Params) (bool, error) {
	method := kind.method("update")
	resp, err := c.Call(ctx, method, params)
	if err != nil {
		return false, err
	}

	if shapes[kind].updated(resp) {
		c.journal.Logf(logger.CategoryUpdate, "updated %s with ID: %d", kind, id)
		return true, nil
	}

	softFailures.WithLabelValues(method).Inc()
	c.journal.Logf(logger.CategoryError, "failed to update %s with ID: %d", kind, id)
	return false, nil
}

func (c *Client) delete(ctx context.Context, kind EntityKind, id int64, params Params) (bool, error) {
	method := kind.method("delete")
	resp, err := c.Call(ctx, method, params)
	if err != nil {
		return false, err
	}

	if shapes[kind].deleted(resp) {
		c.journal.Logf(logger.CategorySuccess, "deleted %s with ID: %d", kind, id)
		return true, nil
	}

	softFailures.WithLabelValues(method).Inc()
	c.journal.Logf(logger.CategoryError, "failed to delete %s with ID: %d", kind, id)
	return false, nil
}

func (c *Client) get(ctx context.Context, kind EntityKind, id int64, params Params) (Record, error) {
	method := kind.method("get")
	resp, err := c.Call(ctx, method, params)
	if err != nil {
		return nil, err
	}

	if v, ok := resp.Lookup(shapes[kind].record...); ok {
		if rec, ok := toRecord(v); ok {
			return rec, nil
		}
	}

	softFailures.WithLabelValues(method).Inc()
	c.journal.Logf(logger.CategoryError, "failed to get %s with ID: %d", kind, id)
	return nil, ErrNoResult
}

func (c *Client) list(ctx context.Context, kind EntityKind, params Params) ([]Record, error) {
	method := kind.method("list")
	resp, err := c.Call(ctx, method, params)
	if err != nil {
		return nil, err
	}

	if v, ok := resp.Lookup(shapes[kind].records...); ok {
		if records, ok := toRecords(v); ok {
			return records, nil
		}
	}

	softFailures.WithLabelValues(method).Inc()
	c.journal.Logf(logger.CategoryError, "failed to list %ss", kind)
	return nil, ErrNoResult
}

// --- 交易 ---

// CreateDeal 返回新交易 ID
func (c *Client) CreateDeal(ctx context.Context, fields Fields) (int64, error) {
	return c.create(ctx, KindDeal, Params{"fields": fields})
}

func (c *Client) UpdateDeal(ctx context.Context, id int64, fields Fields) (bool, error) {
	return c.update(ctx, KindDeal, id, Params{"id": id, "fields": fields})
}

func (c *Client) DeleteDeal(ctx context.Context, id int64) (bool, error) {
	return c.delete(ctx, KindDeal, id, Params{"id": id})
}

func (c *Client) GetDeal(ctx context.Context, id int64) (Record, error) {
	return c.get(ctx, KindDeal, id, Params{"id": id})
}

func (c *Client) ListDeals(ctx context.Context, req ListRequest) ([]Record, error) {
	return c.list(ctx, KindDeal, req.params())
}

// --- 联系人（客户） ---

// CreateContact 返回新联系人 ID
func (c *Client) CreateContact(ctx context.Context, fields Fields) (int64, error) {
	return c.create(ctx, KindContact, Params{"fields": fields})
}

func (c *Client) UpdateContact(ctx context.Context, id int64, fields Fields) (bool, error) {
	return c.update(ctx, KindContact, id, Params{"id": id, "fields": fields})
}

func (c *Client) DeleteContact(ctx context.Context, id int64) (bool, error) {
	return c.delete(ctx, KindContact, id, Params{"id": id})
}

func (c *Client) GetContact(ctx context.Context, id int64) (Record, error) {
	return c.get(ctx, KindContact, id, Params{"id": id})
}

func (c *Client) ListContacts(ctx context.Context, req ListRequest) ([]Record, error) {
	return c.list(ctx, KindContact, req.params())
}

// --- 智能流程元素 ---
// entityTypeID 为 0 时不传

func itemParams(entityTypeID int, p Params) Params {
	if entityTypeID != 0 {
		p["entityTypeId"] = entityTypeID
	}
	return p
}

// CreateItem 返回新元素 ID
func (c *Client) CreateItem(ctx context.Context, entityTypeID int, fields Fields) (int64, error) {
	return c.create(ctx, KindItem, itemParams(entityTypeID, Params{"fields": fields}))
}

func (c *Client) UpdateItem(ctx context.Context, entityTypeID int, id int64, fields Fields) (bool, error) {
	return c.update(ctx, KindItem, id, itemParams(entityTypeID, Params{"id": id, "fields": fields}))
}

func (c *Client) DeleteItem(ctx context.Context, entityTypeID int, id int64) (bool, error) {
	return c.delete(ctx, KindItem, id, itemParams(entityTypeID, Params{"id": id}))
}

func (c *Client) GetItem(ctx context.Context, entityTypeID int, id int64) (Record, error) {
	return c.get(ctx, KindItem, id, itemParams(entityTypeID, Params{"id": id}))
}

func (c *Client) ListItems(ctx context.Context, entityTypeID int, req ListRequest) ([]Record, error) {
	return c.list(ctx, KindItem, itemParams(entityTypeID, req.params()))
}
