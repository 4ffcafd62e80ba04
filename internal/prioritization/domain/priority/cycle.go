package priority

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// CycleDetectedMessage is the summary reported with every cycle error.
const CycleDetectedMessage = "Circular dependency detected."

// ErrCycleDetected matches any *CycleError with errors.Is.
var ErrCycleDetected = errors.New("circular dependency detected")

// CycleError reports a dependency cycle. Path starts and ends with the
// same task id.
type CycleError struct {
	Path []int
}

func (e *CycleError) Error() string {
	return "circular dependency: " + e.Message()
}

// Is makes errors.Is(err, ErrCycleDetected) hold.
func (e *CycleError) Is(target error) bool {
	return target == ErrCycleDetected
}

// Message renders the human readable form, e.g.
// "Task 1 waits for itself via [1, 2, 1]".
func (e *CycleError) Message() string {
	if len(e.Path) == 0 {
		return CycleDetectedMessage
	}
	return fmt.Sprintf("Task %d waits for itself via %s", e.Path[0], FormatPath(e.Path))
}

// FormatPath renders ids as "[a, b, c]".
func FormatPath(path []int) string {
	parts := make([]string, len(path))
	for i, id := range path {
		parts[i] = strconv.Itoa(id)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// CheckCycles returns a *CycleError when the batch contains a dependency
// cycle, nil otherwise.
func CheckCycles(tasks []Task) error {
	if found, path := DetectCycle(tasks); found {
		return &CycleError{Path: path}
	}
	return nil
}

// DetectCycle walks the dependency graph of the batch depth first and
// returns the first cycle it meets. Roots are visited in order of first
// appearance and dependencies in listed order, so the result is stable
// for a given batch. Dependencies naming no task in the batch are leaves.
func DetectCycle(tasks []Task) (bool, []int) {
	graph, order := buildGraph(tasks)

	visited := make(map[int]bool, len(order))
	for _, root := range order {
		if visited[root] {
			continue
		}
		if cycle := walk(root, graph, visited); cycle != nil {
			return true, cycle
		}
	}
	return false, []int{}
}

// buildGraph maps each task id to its dependencies. A repeated id replaces
// the earlier dependency list but keeps its first position in order.
func buildGraph(tasks []Task) (map[int][]int, []int) {
	graph := make(map[int][]int, len(tasks))
	order := make([]int, 0, len(tasks))
	for _, t := range tasks {
		if t.ID == nil {
			continue
		}
		id := *t.ID
		if _, seen := graph[id]; !seen {
			order = append(order, id)
		}
		graph[id] = t.Dependencies
	}
	return graph, order
}

type frame struct {
	node int
	next int
}

func walk(root int, graph map[int][]int, visited map[int]bool) []int {
	visited[root] = true
	path := []int{root}
	onPath := map[int]int{root: 0}
	stack := []frame{{node: root}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		deps := graph[top.node]
		if top.next >= len(deps) {
			delete(onPath, top.node)
			path = path[:len(path)-1]
			stack = stack[:len(stack)-1]
			continue
		}

		dep := deps[top.next]
		top.next++

		if idx, ok := onPath[dep]; ok {
			return append(slices.Clone(path[idx:]), dep)
		}
		if visited[dep] {
			continue
		}
		visited[dep] = true
		if _, known := graph[dep]; !known {
			continue
		}

		onPath[dep] = len(path)
		path = append(path, dep)
		stack = append(stack, frame{node: dep})
	}
	return nil
}
