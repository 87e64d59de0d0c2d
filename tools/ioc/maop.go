package ioc

import (
	"fmt"
	"sync"
)

// MapContainer 以名称索引组件，同时记录注册顺序
type MapContainer struct {
	name    string
	order   []string
	storage map[string]Object
	lock    sync.Mutex
}

// NewMapContainer 创建空容器
func NewMapContainer(name string) *MapContainer {
	return &MapContainer{
		name:    name,
		storage: make(map[string]Object),
	}
}

func (m *MapContainer) RegisterContainer(name string, obj Object) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if _, ok := m.storage[name]; !ok {
		m.order = append(m.order, name)
	}
	m.storage[name] = obj
}

func (m *MapContainer) GetMapContainer(name string) any {
	m.lock.Lock()
	defer m.lock.Unlock()

	obj, ok := m.storage[name]
	if !ok {
		return nil
	}
	return obj
}

// Init 按注册顺序初始化，后注册的组件可以依赖先注册的组件
func (m *MapContainer) Init() error {
	m.lock.Lock()
	names := append([]string(nil), m.order...)
	m.lock.Unlock()

	for _, name := range names {
		obj := m.GetMapContainer(name).(Object)
		if err := obj.Init(); err != nil {
			return fmt.Errorf("%s: init %s: %w", m.name, name, err)
		}
	}
	return nil
}
