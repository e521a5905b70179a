// internal/pkg/registry/resolver.go
package registry

import "fmt"

// Resolver 将逻辑服务名解析为一个可用实例的网络地址。
// 出站客户端只依赖这个接口，注册中心实现可以整体替换。
type Resolver interface {
	// Resolve 返回 "ip:port" 形式的实例地址。
	Resolve(serviceName string) (string, error)
}

// StaticResolver 是一个固定映射的 Resolver 实现，用于本地开发和测试。
type StaticResolver map[string]string

func (r StaticResolver) Resolve(serviceName string) (string, error) {
	addr, ok := r[serviceName]
	if !ok {
		return "", fmt.Errorf("registry: no instance for service %q", serviceName)
	}
	return addr, nil
}
