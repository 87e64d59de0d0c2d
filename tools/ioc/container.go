package ioc

// ConController 业务组件（CRM 客户端、查询服务）
var ConController Container = NewMapContainer("containerMap")

// Api HTTP 接口组件
var Api Container = NewMapContainer("apiContainer")
