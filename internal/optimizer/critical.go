package optimizer

import (
	"fmt"
	"math"
	"slices"

	"github.com/sysu-ecnc-dev/resource-allocator/backend/internal/domain"
)

// CriticalFunc 判断哪些任务是关键任务
type CriticalFunc func(tasks []domain.Task) (map[int64]bool, error)

// CriticalPath 使用关键路径法计算关键任务（总时差为 0）。
// 工期以天为单位向上取整，最少为 1 天。
func CriticalPath(tasks []domain.Task) (map[int64]bool, error) {
	order, err := topoSort(tasks)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]domain.Task, len(tasks))
	durations := make(map[int64]int, len(tasks))
	successors := make(map[int64][]int64, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
		durations[t.ID] = max(1, int(math.Ceil(t.DurationDays())))
		for _, dep := range t.Dependencies {
			successors[dep] = append(successors[dep], t.ID)
		}
	}

	// 正推：最早开始和最早结束
	es := make(map[int64]int, len(tasks))
	ef := make(map[int64]int, len(tasks))
	total := 0
	for _, id := range order {
		start := 0
		for _, dep := range byID[id].Dependencies {
			start = max(start, ef[dep])
		}
		es[id] = start
		ef[id] = start + durations[id]
		total = max(total, ef[id])
	}

	// 逆推：最迟开始
	ls := make(map[int64]int, len(tasks))
	critical := make(map[int64]bool, len(tasks))
	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		lf := total
		for _, succ := range successors[id] {
			lf = min(lf, ls[succ])
		}
		ls[id] = lf - durations[id]
		critical[id] = ls[id]-es[id] == 0
	}

	return critical, nil
}

// topoSort 使用 Kahn 算法进行拓扑排序，同时检查依赖是否存在以及是否有环
func topoSort(tasks []domain.Task) ([]int64, error) {
	inDegree := make(map[int64]int, len(tasks))
	for _, t := range tasks {
		inDegree[t.ID] = 0
	}

	successors := make(map[int64][]int64, len(tasks))
	for _, t := range tasks {
		for _, dep := range t.Dependencies {
			if _, exists := inDegree[dep]; !exists {
				return nil, fmt.Errorf("任务 %d 依赖的任务 %d 不存在", t.ID, dep)
			}
			successors[dep] = append(successors[dep], t.ID)
			inDegree[t.ID]++
		}
	}

	queue := make([]int64, 0)
	for id, d := range inDegree {
		if d == 0 {
			queue = append(queue, id)
		}
	}
	slices.Sort(queue)

	order := make([]int64, 0, len(tasks))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)

		ready := make([]int64, 0)
		for _, succ := range successors[id] {
			inDegree[succ]--
			if inDegree[succ] == 0 {
				ready = append(ready, succ)
			}
		}
		slices.Sort(ready)
		queue = append(queue, ready...)
	}

	if len(order) != len(tasks) {
		return nil, fmt.Errorf("任务依赖存在环（%d/%d 个任务可排序）", len(order), len(tasks))
	}

	return order, nil
}
