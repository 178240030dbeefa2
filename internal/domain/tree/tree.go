// Package tree 将扁平的 parent_id 行组装为有序森林。
// 纯计算，调用方需一次性取出完整集合。
package tree

import (
	"errors"
	"fmt"
)

// ErrCycle parent_id 链路成环
var ErrCycle = errors.New("tree: cycle in parent linkage")

// Node parent 为 0 表示根
type Node interface {
	NodeID() int64
	ParentNodeID() int64
	SortOrder() int
}

// Build 先校验无环，再从根节点递归构建；每一层按 SortOrder 稳定排序。
// 父节点不在集合内的节点（如被过滤掉的父级）不会出现在结果中。
func Build[N Node, O any](nodes []N, project func(n N, children []O) O) ([]O, error) {
	byID := make(map[int64]struct{}, len(nodes))
	for _, n := range nodes {
		byID[n.NodeID()] = struct{}{}
	}
	if err := checkAcyclic(nodes, byID); err != nil {
		return nil, err
	}
	// 同一父节点下保持输入顺序
	children := make(map[int64][]N, len(nodes))
	roots := make([]N, 0)
	for _, n := range nodes {
		pid := n.ParentNodeID()
		if pid == 0 {
			roots = append(roots, n)
			continue
		}
		children[pid] = append(children[pid], n)
	}
	var build func(level []N) []O
	build = func(level []N) []O {
		level = Stable(level)
		out := make([]O, 0, len(level))
		for _, n := range level {
			out = append(out, project(n, build(children[n.NodeID()])))
		}
		return out
	}
	return build(roots), nil
}

func checkAcyclic[N Node](nodes []N, present map[int64]struct{}) error {
	const (
		visiting = 1
		done     = 2
	)
	parent := make(map[int64]int64, len(nodes))
	for _, n := range nodes {
		parent[n.NodeID()] = n.ParentNodeID()
	}
	state := make(map[int64]uint8, len(nodes))
	for _, n := range nodes {
		var path []int64
		id := n.NodeID()
		for {
			if state[id] == done {
				break
			}
			if state[id] == visiting {
				return fmt.Errorf("%w: node id=%d", ErrCycle, id)
			}
			state[id] = visiting
			path = append(path, id)
			pid := parent[id]
			if pid == 0 {
				break
			}
			if _, ok := present[pid]; !ok {
				break
			}
			id = pid
		}
		for _, v := range path {
			state[v] = done
		}
	}
	return nil
}

// WouldCycle 把 id 挂到 newParent 下是否会成环（newParent 是 id 自身或其后代）
func WouldCycle[N Node](nodes []N, id, newParent int64) bool {
	if newParent == 0 {
		return false
	}
	parent := make(map[int64]int64, len(nodes))
	for _, n := range nodes {
		parent[n.NodeID()] = n.ParentNodeID()
	}
	seen := make(map[int64]struct{})
	for cur := newParent; cur != 0; cur = parent[cur] {
		if cur == id {
			return true
		}
		if _, ok := seen[cur]; ok {
			return true
		}
		seen[cur] = struct{}{}
	}
	return false
}
