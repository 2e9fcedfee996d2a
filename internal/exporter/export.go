package exporter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"nac_patrimony_crawler/internal/model"
	"nac_patrimony_crawler/internal/util"
)

var bom = []byte{0xEF, 0xBB, 0xBF}

var headers = map[string][]string{
	"en": {"IPV4", "ASSET-ID", "USER", "PRIMARY-OWNER", "CO-OWNER", "STATUS"},
	"pt": {"IPV4", "PATRIMÔNIO", "USUÁRIO DO NAC", "RESPONSÁVEL PATRIMONIAL", "CO-RESPONSÁVEL PATRIMONIAL", "ESTADO"},
}

var ptStatus = map[model.Status]string{
	model.StatusNoOwnership:   "Nenhuma informação de patrimônio.",
	model.StatusOwnerIsUser:   "O responsável patrimonial é o usuário da máquina.",
	model.StatusCoOwnerIsUser: "O co-responsável patrimonial é o usuário da máquina.",
	model.StatusNotLinked:     "O usuário não está vinculado ao patrimônio.",
	model.StatusLoadFailed:    "Não foi possível carregar a página de detalhes.",
}

// Header 返回指定语言的表头，未知语言使用英文
func Header(locale string) []string {
	if h, ok := headers[locale]; ok {
		return append([]string(nil), h...)
	}
	return append([]string(nil), headers["en"]...)
}

// DescribeStatus 返回状态在指定语言下的描述
func DescribeStatus(s model.Status, locale string) string {
	if locale == "pt" {
		if d, ok := ptStatus[s]; ok {
			return d
		}
	}
	return string(s)
}

// Assembler 独占累积的记录，按到达顺序追加
type Assembler struct {
	records []model.DetailRecord
}

// NewAssembler 创建 Assembler，expected 为预期记录数
func NewAssembler(expected int) *Assembler {
	return &Assembler{records: make([]model.DetailRecord, 0, expected)}
}

// Add 追加一条已完成的记录
func (a *Assembler) Add(r model.DetailRecord) {
	a.records = append(a.records, r)
}

// Len 返回已累积的记录数
func (a *Assembler) Len() int { return len(a.records) }

// Report 生成报告（表头 + 记录副本）
func (a *Assembler) Report(locale string) model.Report {
	return model.Report{
		Header:  Header(locale),
		Records: append([]model.DetailRecord(nil), a.records...),
	}
}

// WriteCSV 写入 UTF-8 BOM、表头和每条记录一行（分号分隔）
func WriteCSV(w io.Writer, report model.Report, locale string) error {
	if _, err := w.Write(bom); err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	writer.Comma = ';'

	if err := writer.Write(report.Header); err != nil {
		return fmt.Errorf("写入表头失败: %w", err)
	}
	for _, r := range report.Records {
		record := []string{
			string(r.Identifier),
			r.AssetID,
			r.User,
			r.PrimaryOwner,
			r.CoOwner,
			DescribeStatus(r.Status, locale),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("写入 %s 失败: %w", r.Identifier, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// Save 将报告写入 dir 下，文件名经 util.ResolveReportFileName 规整
// 返回文件路径和字节数
func Save(dir, name string, report model.Report, locale string) (string, int64, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", 0, fmt.Errorf("创建输出目录失败: %w", err)
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, report, locale); err != nil {
		return "", 0, err
	}

	outputPath := filepath.Join(dir, util.ResolveReportFileName(name))
	if err := os.WriteFile(outputPath, buf.Bytes(), 0644); err != nil {
		return "", 0, fmt.Errorf("写入报告失败: %w", err)
	}
	return outputPath, int64(buf.Len()), nil
}
