package detection

import "sort"

// ConnectedComponents groups the set pixels of a row-major mask into
// 8-connected components.
//
// Each component lists its pixel indices (y*width + x) in ascending order.
// Components are returned in the order their first pixel appears in a
// row-major scan, so the result is deterministic.
//
// Uses a stack-based flood fill rather than recursion so large regions
// cannot overflow the goroutine stack.
func ConnectedComponents(mask []bool, width, height int) [][]int {
	visited := make([]bool, len(mask))
	var components [][]int

	for start, set := range mask {
		if !set || visited[start] {
			continue
		}
		component := floodFill(mask, visited, start, width, height)
		sort.Ints(component)
		components = append(components, component)
	}
	return components
}

// floodFill collects the 8-connected set pixels reachable from start.
func floodFill(mask, visited []bool, start, width, height int) []int {
	component := make([]int, 0, 16)
	stack := []int{start}
	visited[start] = true

	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		component = append(component, i)

		x, y := i%width, i/width
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				nx, ny := x+dx, y+dy
				if nx < 0 || nx >= width || ny < 0 || ny >= height {
					continue
				}
				j := ny*width + nx
				if mask[j] && !visited[j] {
					visited[j] = true
					stack = append(stack, j)
				}
			}
		}
	}
	return component
}
