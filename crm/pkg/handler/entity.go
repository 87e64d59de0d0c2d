package handler

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"

	"crmbridge/crm/pkg/crm"
	"crmbridge/tools/middleware"
	"crmbridge/tools/validator"
)

// entity 一类 CRM 实体的 CRUD 路由。
// typeID 只对智能流程元素有意义，其余实体忽略。
type entity struct {
	h      *Handler
	kind   crm.EntityKind
	typed  bool
	create func(ctx context.Context, typeID int, fields crm.Fields) (int64, error)
	update func(ctx context.Context, typeID int, id int64, fields crm.Fields) (bool, error)
	remove func(ctx context.Context, typeID int, id int64) (bool, error)
	get    func(ctx context.Context, typeID int, id int64) (crm.Record, error)
	list   func(ctx context.Context, typeID int, req crm.ListRequest) ([]crm.Record, error)

	// fields 把请求转换成 CRM 字段，为空时直接使用 req.Fields
	fields func(req EntityRequest) crm.Fields
	// view 返回给前端之前补充派生字段
	view func(rec crm.Record) crm.Record
}

func (h *Handler) entities() []*entity {
	return []*entity{
		{
			h:    h,
			kind: crm.KindDeal,
			create: func(ctx context.Context, _ int, f crm.Fields) (int64, error) {
				return h.crm.CreateDeal(ctx, f)
			},
			update: func(ctx context.Context, _ int, id int64, f crm.Fields) (bool, error) {
				return h.crm.UpdateDeal(ctx, id, f)
			},
			remove: func(ctx context.Context, _ int, id int64) (bool, error) {
				return h.crm.DeleteDeal(ctx, id)
			},
			get: func(ctx context.Context, _ int, id int64) (crm.Record, error) {
				return h.crm.GetDeal(ctx, id)
			},
			list: func(ctx context.Context, _ int, req crm.ListRequest) ([]crm.Record, error) {
				return h.crm.ListDeals(ctx, req)
			},
		},
		{
			h:    h,
			kind: crm.KindContact,
			create: func(ctx context.Context, _ int, f crm.Fields) (int64, error) {
				return h.crm.CreateContact(ctx, f)
			},
			update: func(ctx context.Context, _ int, id int64, f crm.Fields) (bool, error) {
				return h.crm.UpdateContact(ctx, id, f)
			},
			remove: func(ctx context.Context, _ int, id int64) (bool, error) {
				return h.crm.DeleteContact(ctx, id)
			},
			get: func(ctx context.Context, _ int, id int64) (crm.Record, error) {
				return h.crm.GetContact(ctx, id)
			},
			list: func(ctx context.Context, _ int, req crm.ListRequest) ([]crm.Record, error) {
				return h.crm.ListContacts(ctx, req)
			},
			fields: contactFields,
			view:   contactView,
		},
		{
			h:      h,
			kind:   crm.KindItem,
			typed:  true,
			create: h.crm.CreateItem,
			update: h.crm.UpdateItem,
			remove: h.crm.DeleteItem,
			get:    h.crm.GetItem,
			list:   h.crm.ListItems,
		},
	}
}

// register 例如 deal:
// POST /deal, PUT|DELETE|GET /deal/:id, GET /deals
// item 多一级 :typeId
func (e *entity) register(r gin.IRouter) {
	single := "/" + string(e.kind)
	plural := single + "s"
	if e.typed {
		single += "/:typeId"
		plural += "/:typeId"
	}

	r.POST(single, e.handleCreate)
	r.PUT(single+"/:id", e.handleUpdate)
	r.DELETE(single+"/:id", e.handleDelete)
	r.GET(single+"/:id", e.handleGet)
	r.GET(plural, e.handleList)
}

func (e *entity) typeID(c *gin.Context) (int, error) {
	if !e.typed {
		return 0, nil
	}
	id, err := pathID(c, "typeId")
	return int(id), err
}

func (e *entity) handleCreate(c *gin.Context) {
	typeID, err := e.typeID(c)
	if err != nil {
		e.h.fail(c, err)
		return
	}
	fields, ok := e.bindFields(c)
	if !ok {
		return
	}

	id, err := e.create(c.Request.Context(), typeID, fields)
	if err != nil {
		e.h.fail(c, err)
		return
	}
	middleware.Success(gin.H{"id": id}, c)
}

func (e *entity) handleUpdate(c *gin.Context) {
	typeID, id, ok := e.ids(c)
	if !ok {
		return
	}
	fields, ok := e.bindFields(c)
	if !ok {
		return
	}

	updated, err := e.update(c.Request.Context(), typeID, id, fields)
	if err != nil {
		e.h.fail(c, err)
		return
	}
	if !updated {
		e.h.fail(c, middleware.ErrNotFound("%s %d was not updated", e.kind, id))
		return
	}
	middleware.Success(gin.H{"id": id, "updated": true}, c)
}

func (e *entity) handleDelete(c *gin.Context) {
	typeID, id, ok := e.ids(c)
	if !ok {
		return
	}

	deleted, err := e.remove(c.Request.Context(), typeID, id)
	if err != nil {
		e.h.fail(c, err)
		return
	}
	if !deleted {
		e.h.fail(c, middleware.ErrNotFound("%s %d was not deleted", e.kind, id))
		return
	}
	middleware.Success(gin.H{"id": id, "deleted": true}, c)
}

func (e *entity) handleGet(c *gin.Context) {
	typeID, id, ok := e.ids(c)
	if !ok {
		return
	}

	rec, err := e.get(c.Request.Context(), typeID, id)
	if err != nil {
		e.h.fail(c, err)
		return
	}
	if e.view != nil {
		rec = e.view(rec)
	}
	middleware.Success(rec, c)
}

// handleList GET /deals?start=N，filter/select 可以放在 JSON body 中
func (e *entity) handleList(c *gin.Context) {
	typeID, err := e.typeID(c)
	if err != nil {
		e.h.fail(c, err)
		return
	}
	page, err := middleware.NewStartRequestFromContext(c)
	if err != nil {
		e.h.fail(c, err)
		return
	}
	var req ListRequest
	if c.Request.ContentLength > 0 && !e.h.bind(c, &req) {
		return
	}

	records, err := e.list(c.Request.Context(), typeID, crm.ListRequest{
		Filter: req.Filter,
		Select: req.Select,
		Start:  page.Start,
	})
	if err != nil {
		e.h.fail(c, err)
		return
	}
	if e.view != nil {
		for i, rec := range records {
			records[i] = e.view(rec)
		}
	}
	middleware.Success(gin.H{"items": records, "start": page.Start}, c)
}

func (e *entity) ids(c *gin.Context) (int, int64, bool) {
	typeID, err := e.typeID(c)
	if err != nil {
		e.h.fail(c, err)
		return 0, 0, false
	}
	id, err := pathID(c, "id")
	if err != nil {
		e.h.fail(c, fmt.Errorf("%s: %w", e.kind, err))
		return 0, 0, false
	}
	return typeID, id, true
}

func (e *entity) bindFields(c *gin.Context) (crm.Fields, bool) {
	var req EntityRequest
	if !e.h.bind(c, &req) {
		return nil, false
	}

	fields := req.Fields
	if e.fields != nil {
		fields = e.fields(req)
	}
	if len(fields) == 0 {
		e.h.fail(c, middleware.ErrValidateFailed("fields are required"))
		return nil, false
	}
	return fields, true
}

// contactFields full_name 拆分为姓、名、父称，fields 中已有的字段优先
func contactFields(req EntityRequest) crm.Fields {
	if req.FullName == "" {
		return req.Fields
	}

	fields := crm.Fields{}
	name := validator.SplitFullName(req.FullName)
	for key, value := range map[string]string{
		"LAST_NAME":   name.LastName,
		"NAME":        name.FirstName,
		"SECOND_NAME": name.MiddleName,
	} {
		if value != "" {
			fields[key] = value
		}
	}
	for key, value := range req.Fields {
		fields[key] = value
	}
	return fields
}

// contactView 补充 FULL_NAME，不修改 CRM 返回的原记录
func contactView(rec crm.Record) crm.Record {
	if _, ok := rec["FULL_NAME"]; ok {
		return rec
	}
	full := validator.CombineFullName(
		cast.ToString(rec["LAST_NAME"]),
		cast.ToString(rec["NAME"]),
		cast.ToString(rec["SECOND_NAME"]),
	)
	if full == "" {
		return rec
	}

	out := make(crm.Record, len(rec)+1)
	for k, v := range rec {
		out[k] = v
	}
	out["FULL_NAME"] = full
	return out
}
