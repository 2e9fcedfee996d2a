package query

import (
	"net/url"
	"regexp"
	"strings"
)

// BuildDetailURL 拼接详情页地址：<base>?IP=<id>&blocoConsulta=<ctx>
// 上下文参数原样转发（它本身取自清单页地址）
func BuildDetailURL(base, identifier, contextParam string) string {
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + "IP=" + url.QueryEscape(identifier) + "&blocoConsulta=" + contextParam
}

// CompilePattern 编译详情页地址模式；空模式退化为匹配 base 前缀
func CompilePattern(pattern, base string) (*regexp.Regexp, error) {
	if strings.TrimSpace(pattern) == "" {
		pattern = "^" + regexp.QuoteMeta(base)
	}
	return regexp.Compile(pattern)
}
