package seed

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/resource-allocator/backend/internal/domain"
)

func TestParseCostHistory(t *testing.T) {
	data := strings.Join([]string{
		"资源类型,天数,占用比例,日成本,预估成本,实际成本",
		"工人,10,50,400,2000,2200",
		"设备,3,100,1500,4500,5400",
		"未知,1,1,1,1,1",
		"材料,abc,1,1,1,1",
	}, "\n")

	records, err := ParseCostHistory(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, domain.CostRecord{
		ResourceType:  domain.ResourceTypeWorker,
		DurationDays:  10,
		Percentage:    50,
		CostRate:      400,
		EstimatedCost: 2000,
		ActualCost:    2200,
	}, records[0])
	assert.Equal(t, domain.ResourceTypeEquipment, records[1].ResourceType)
}

func TestParseCostHistory_ColumnOrder(t *testing.T) {
	data := "实际成本,预估成本,日成本,占用比例,天数,资源类型\n110,100,10,100,10,工人\n"

	records, err := ParseCostHistory(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 110.0, records[0].ActualCost)
	assert.Equal(t, 10.0, records[0].DurationDays)
}

func TestParseCostHistory_MissingColumn(t *testing.T) {
	_, err := ParseCostHistory(strings.NewReader("资源类型,天数\n工人,1\n"))
	assert.Error(t, err)
}

func TestParseCostHistory_Empty(t *testing.T) {
	_, err := ParseCostHistory(strings.NewReader(""))
	assert.Error(t, err)
}
