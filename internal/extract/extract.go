// Package extract 从 NAC 详情页中读取带标签的段落字段。
package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"nac_patrimony_crawler/internal/model"
)

// 详情页中的固定标签
const (
	LabelUser    = "Nome do Usuário:"
	LabelOwner   = "Responsável:"
	LabelCoOwner = "Co-Responsável:"
	LabelAssetID = "Patrimônio:"
)

// Extractor 在详情页的字段区域（默认 .fieldset-1）内查找标签段落
type Extractor struct {
	scope string
}

// New 创建 Extractor；scope 为字段区域的选择器
func New(scope string) *Extractor {
	return &Extractor{scope: scope}
}

// Field 返回第一个包含 label 的段落去掉标签后的值（去空白并转大写）
// 不存在时返回 ("", false)
func (e *Extractor) Field(doc *goquery.Document, label string) (string, bool) {
	p := e.find(doc, label)
	if p == nil {
		return "", false
	}
	return Normalize(p.Text(), label), true
}

// Has 判断是否存在包含 label 的段落
func (e *Extractor) Has(doc *goquery.Document, label string) bool {
	return e.find(doc, label) != nil
}

// Extract 读取一页的全部字段，缺失字段为 model.Sentinel
// 没有 "Responsável:" 段落时不读取资产编号、负责人与共同负责人
func (e *Extractor) Extract(doc *goquery.Document) model.Fields {
	f := model.EmptyFields()
	f.User = e.fieldOrSentinel(doc, LabelUser)
	if !e.Has(doc, LabelOwner) {
		return f
	}
	f.Owner = e.fieldOrSentinel(doc, LabelOwner)
	f.CoOwner = e.fieldOrSentinel(doc, LabelCoOwner)
	f.AssetID = e.fieldOrSentinel(doc, LabelAssetID)
	return f
}

// fieldOrSentinel 标签缺失或值为空时都记为 model.Sentinel
func (e *Extractor) fieldOrSentinel(doc *goquery.Document, label string) string {
	v, ok := e.Field(doc, label)
	if !ok || v == "" {
		return model.Sentinel
	}
	return v
}

func (e *Extractor) find(doc *goquery.Document, label string) *goquery.Selection {
	if doc == nil {
		return nil
	}
	var found *goquery.Selection
	doc.Find(e.scope).Find("p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if containsLabel(s.Text(), label) {
			found = s
			return false
		}
		return true
	})
	return found
}

// containsLabel 要求标签位于文本开头或紧跟空白，
// 避免 "Responsável:" 命中 "Co-Responsável:"
func containsLabel(text, label string) bool {
	return labelIndex(text, label) >= 0
}

// labelIndex 返回第一个满足边界条件的标签位置，没有时为 -1
func labelIndex(text, label string) int {
	for i := 0; ; {
		j := strings.Index(text[i:], label)
		if j < 0 {
			return -1
		}
		at := i + j
		if at == 0 {
			return at
		}
		if r, _ := utf8.DecodeLastRuneInString(text[:at]); unicode.IsSpace(r) {
			return at
		}
		i = at + len(label)
	}
}

// Normalize 去掉第一个按边界匹配到的标签、首尾空白并转大写；对已规整的值幂等
func Normalize(text, label string) string {
	if label != "" {
		if at := labelIndex(text, label); at >= 0 {
			text = text[:at] + text[at+len(label):]
		}
	}
	return strings.ToUpper(strings.TrimSpace(text))
}
