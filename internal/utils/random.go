package utils

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/mozillazg/go-pinyin"
	"github.com/sysu-ecnc-dev/resource-allocator/backend/internal/domain"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "勇", "霞", "飞", "玲",
	"超", "华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌",
	"庆", "建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

var digits = "0123456789"

// GenerateCodeFromName 根据名称的拼音生成资源编号，例如 "王伟" -> "wang_wei_042"
func GenerateCodeFromName(name string) string {
	pinyinArray := pinyin.LazyConvert(name, nil)
	if len(pinyinArray) == 0 {
		pinyinArray = []string{"res"}
	}

	code := strings.Join(pinyinArray, "_") + "_"
	for i := 0; i < 3; i++ {
		code += string(digits[rand.Intn(len(digits))])
	}

	return code
}

var workerSkills = []string{"混凝土", "钢筋", "木工", "焊接", "电工", "水暖", "砌筑", "抹灰"}

var equipmentNames = []string{"塔吊", "挖掘机", "装载机", "混凝土泵车", "压路机", "升降机"}

// 使用 Fisher-Yates 洗牌算法来生成一个随机子集
func GenerateRandomSubset(arr []string, maxSize int) []string {
	arrCopy := append([]string{}, arr...) // 复制数组，避免修改原数组

	for i := 0; i < len(arrCopy)-1; i++ {
		j := rand.Intn(len(arrCopy)-i) + i
		arrCopy[i], arrCopy[j] = arrCopy[j], arrCopy[i]
	}

	l := rand.Intn(min(maxSize, len(arrCopy))) + 1
	return arrCopy[:l]
}

func GenerateRandomWorker(availableFrom time.Time, days int) *domain.Resource {
	name := GenerateRandomChineseName()

	return &domain.Resource{
		Type:           domain.ResourceTypeWorker,
		Name:           name,
		Code:           GenerateCodeFromName(name),
		AvailableFrom:  availableFrom,
		AvailableUntil: availableFrom.AddDate(0, 0, days),
		CostRate:       float64(200 + rand.Intn(400)),
		Skills:         GenerateRandomSubset(workerSkills, 3),
	}
}

func GenerateRandomEquipment(availableFrom time.Time, days int) *domain.Resource {
	name := equipmentNames[rand.Intn(len(equipmentNames))]

	return &domain.Resource{
		Type:           domain.ResourceTypeEquipment,
		Name:           name,
		Code:           GenerateCodeFromName(name),
		AvailableFrom:  availableFrom,
		AvailableUntil: availableFrom.AddDate(0, 0, days),
		CostRate:       float64(800 + rand.Intn(1600)),
		Skills:         make([]string, 0),
	}
}

var taskNames = []string{"场地平整", "基坑开挖", "地基浇筑", "钢筋绑扎", "模板安装", "主体结构", "砌体工程", "水电预埋", "屋面防水", "外墙装饰", "室内装修", "竣工清理"}

// GenerateRandomTask 生成一个从 start 开始的任务，返回的任务还没有 ID 和前置任务
func GenerateRandomTask(projectID int64, index int, start time.Time) *domain.Task {
	days := rand.Intn(10) + 2
	required := make([]string, 0)
	// 大约一半的任务有技能要求
	if rand.Intn(2) == 0 {
		required = GenerateRandomSubset(workerSkills, 1)
	}

	return &domain.Task{
		ProjectID:      projectID,
		Name:           fmt.Sprintf("%s-%02d", taskNames[index%len(taskNames)], index+1),
		StartDate:      start,
		EndDate:        start.AddDate(0, 0, days),
		EstimatedCost:  float64(days * (1000 + rand.Intn(3000))),
		RequiredSkills: required,
		Dependencies:   make([]int64, 0),
	}
}

var resourceTypes = []domain.ResourceType{
	domain.ResourceTypeWorker,
	domain.ResourceTypeEquipment,
	domain.ResourceTypeMaterial,
}

// GenerateRandomCostRecord 生成一条历史成本记录，实际成本在预估成本附近波动，设备更容易超支
func GenerateRandomCostRecord() domain.CostRecord {
	resourceType := resourceTypes[rand.Intn(len(resourceTypes))]
	days := float64(rand.Intn(30) + 1)
	percentage := float64(rand.Intn(91) + 10)
	costRate := float64(200 + rand.Intn(2000))
	estimated := costRate * percentage / 100 * days

	overrun := 0.9 + rand.Float64()*0.3
	if resourceType == domain.ResourceTypeEquipment {
		overrun += 0.15
	}

	return domain.CostRecord{
		ResourceType:  resourceType,
		DurationDays:  days,
		Percentage:    percentage,
		CostRate:      costRate,
		EstimatedCost: estimated,
		ActualCost:    estimated * overrun,
	}
}
