package util

import (
	"net"
	"strings"
)

// IsIPv4 判断标识是否为合法 IPv4 字面量（不接受 CIDR 与 IPv6）
func IsIPv4(id string) bool {
	id = strings.TrimSpace(id)
	if id == "" || strings.ContainsAny(id, "/:") {
		return false
	}
	ip := net.ParseIP(id)
	return ip != nil && ip.To4() != nil && strings.Count(id, ".") == 3
}

// SegmentOf 返回 IPv4 所在的 /24 网段，非 IPv4 返回空串
func SegmentOf(id string) string {
	if !IsIPv4(id) {
		return ""
	}
	parts := strings.Split(strings.TrimSpace(id), ".")
	return parts[0] + "." + parts[1] + "." + parts[2] + ".0/24"
}
