package analysis

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"

	"nac_patrimony_crawler/internal/model"
	"nac_patrimony_crawler/internal/util"
)

// StatusCounts 统计各状态的记录数
func StatusCounts(records []model.DetailRecord) map[model.Status]int {
	counts := make(map[model.Status]int, len(model.Statuses))
	for _, r := range records {
		counts[r.Status]++
	}
	return counts
}

// SegmentInfo 表示一个 /24 网段内的状态统计
type SegmentInfo struct {
	Segment string
	Total   int
	Counts  map[model.Status]int
}

// SegmentBreakdown 按 /24 网段汇总记录，非 IPv4 标识归入 "other"
func SegmentBreakdown(records []model.DetailRecord) []SegmentInfo {
	bySegment := make(map[string]*SegmentInfo)
	for _, r := range records {
		seg := util.SegmentOf(string(r.Identifier))
		if seg == "" {
			seg = "other"
		}
		info, ok := bySegment[seg]
		if !ok {
			info = &SegmentInfo{Segment: seg, Counts: make(map[model.Status]int)}
			bySegment[seg] = info
		}
		info.Total++
		info.Counts[r.Status]++
	}

	result := make([]SegmentInfo, 0, len(bySegment))
	for _, info := range bySegment {
		result = append(result, *info)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Segment < result[j].Segment
	})
	return result
}

// ExportSegments 导出网段汇总（分号分隔，UTF-8 BOM）
func ExportSegments(segments []SegmentInfo, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer file.Close()

	// 写入UTF-8 BOM，确保Excel等软件能正确识别
	if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return err
	}

	writer := csv.NewWriter(file)
	writer.Comma = ';'

	header := []string{"SEGMENT", "TOTAL"}
	for _, s := range model.Statuses {
		header = append(header, string(s))
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("写入表头失败: %w", err)
	}

	for _, seg := range segments {
		row := []string{seg.Segment, strconv.Itoa(seg.Total)}
		for _, s := range model.Statuses {
			row = append(row, strconv.Itoa(seg.Counts[s]))
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("写入网段 %s 失败: %w", seg.Segment, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return file.Close()
}
