package seed

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"

	"github.com/sysu-ecnc-dev/resource-allocator/backend/internal/domain"
	"github.com/sysu-ecnc-dev/resource-allocator/backend/internal/repository"
)

// 历史成本表的表头
var CostHistoryHeaders = []string{"资源类型", "天数", "占用比例", "日成本", "预估成本", "实际成本"}

var resourceTypeMap = map[string]domain.ResourceType{
	"工人": domain.ResourceTypeWorker,
	"设备": domain.ResourceTypeEquipment,
	"材料": domain.ResourceTypeMaterial,
}

// ParseCostHistory 解析历史成本 csv，无法解析的行会被跳过
func ParseCostHistory(r io.Reader) ([]domain.CostRecord, error) {
	reader := csv.NewReader(r)

	// 读取表头
	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("读取表头失败: %w", err)
	}

	index := make(map[string]int, len(headers))
	for i, header := range headers {
		index[header] = i
	}
	for _, header := range CostHistoryHeaders {
		if !slices.Contains(headers, header) {
			return nil, fmt.Errorf("没有找到列 %q", header)
		}
	}

	records := make([]domain.CostRecord, 0)
	line := 1
	for {
		row, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("读取文件失败: %w", err)
		}
		line++

		resourceType, ok := resourceTypeMap[row[index["资源类型"]]]
		if !ok {
			slog.Warn("未知的资源类型", slog.Int("line", line), slog.String("value", row[index["资源类型"]]))
			continue
		}

		values := make([]float64, 0, 5)
		for _, header := range CostHistoryHeaders[1:] {
			v, err := strconv.ParseFloat(row[index[header]], 64)
			if err != nil {
				slog.Warn("转换数值失败", slog.Int("line", line), slog.String("column", header))
				break
			}
			values = append(values, v)
		}
		if len(values) != 5 {
			continue
		}

		records = append(records, domain.CostRecord{
			ResourceType:  resourceType,
			DurationDays:  values[0],
			Percentage:    values[1],
			CostRate:      values[2],
			EstimatedCost: values[3],
			ActualCost:    values[4],
		})
	}

	return records, nil
}

func SeedCostHistory(r *repository.Repository, path string) {
	file, err := os.Open(path)
	if err != nil {
		slog.Error("打开文件失败", "error", err)
		return
	}
	defer file.Close()

	records, err := ParseCostHistory(file)
	if err != nil {
		slog.Error("解析历史成本失败", "error", err)
		return
	}

	if err := r.InsertCostRecords(records); err != nil {
		slog.Error("插入历史成本失败", "error", err)
		return
	}

	slog.Info("插入历史成本完成", slog.Int("count", len(records)))
}
