package handler

import (
	"context"

	"crmbridge/crm/pkg/crm"
)

// CRM 处理器依赖的 CRM 操作，*crm.Client 实现了该接口
type CRM interface {
	CreateDeal(ctx context.Context, fields crm.Fields) (int64, error)
	UpdateDeal(ctx context.Context, id int64, fields crm.Fields) (bool, error)
	DeleteDeal(ctx context.Context, id int64) (bool, error)
	GetDeal(ctx context.Context, id int64) (crm.Record, error)
	ListDeals(ctx context.Context, req crm.ListRequest) ([]crm.Record, error)

	CreateContact(ctx context.Context, fields crm.Fields) (int64, error)
	UpdateContact(ctx context.Context, id int64, fields crm.Fields) (bool, error)
	DeleteContact(ctx context.Context, id int64) (bool, error)
	GetContact(ctx context.Context, id int64) (crm.Record, error)
	ListContacts(ctx context.Context, req crm.ListRequest) ([]crm.Record, error)

	CreateItem(ctx context.Context, entityTypeID int, fields crm.Fields) (int64, error)
	UpdateItem(ctx context.Context, entityTypeID int, id int64, fields crm.Fields) (bool, error)
	DeleteItem(ctx context.Context, entityTypeID int, id int64) (bool, error)
	GetItem(ctx context.Context, entityTypeID int, id int64) (crm.Record, error)
	ListItems(ctx context.Context, entityTypeID int, req crm.ListRequest) ([]crm.Record, error)

	CreateDocument(ctx context.Context, templateID, entityTypeID, entityID int64, values map[string]any) (int64, error)
	EnablePublicURL(ctx context.Context, documentID int64) (string, error)
}

// ClientFinder 按电话/IIN 查找客户
type ClientFinder interface {
	FindClients(ctx context.Context, phone, iin string) ([]crm.Record, error)
}

// LookupRequest POST /crm/client/lookup
type LookupRequest struct {
	Phone string `json:"phone"`
	IIN   string `json:"iin"`
}

// EntityRequest 创建/更新实体。
// 联系人可以只传 full_name（"姓 名 父称"），拆分后写入 LAST_NAME/NAME/SECOND_NAME。
type EntityRequest struct {
	Fields   crm.Fields `json:"fields"`
	FullName string     `json:"full_name"`
}

// ListRequest 列表查询，start 也可以放在 query 中
type ListRequest struct {
	Filter map[string]any `json:"filter"`
	Select []string       `json:"select"`
}

// DocumentRequest POST /crm/document
type DocumentRequest struct {
	TemplateID   int64          `json:"template_id"`
	EntityTypeID int64          `json:"entity_type_id"`
	EntityID     int64          `json:"entity_id"`
	Values       map[string]any `json:"values"`
}

// DocumentResponse 生成的文档和公开链接
type DocumentResponse struct {
	DocumentID int64  `json:"document_id"`
	PublicURL  string `json:"public_url"`
}
