package ioc

// Container 组件容器，按注册顺序初始化
type Container interface {
	RegisterContainer(name string, obj Object)
	GetMapContainer(name string) any
	Init() error
}

// Object 可被容器托管的组件
type Object interface {
	Init() error
}
