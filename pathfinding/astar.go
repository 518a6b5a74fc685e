package pathfinding

import (
	"container/heap"
	"errors"
	"fmt"

	"flowdesigner/geometry"
	"flowdesigner/obstacles"
)

var (
	errNoPath    = errors.New("no path found")
	errNodeLimit = errors.New("pathfinding exceeded node limit")
)

// AStarNode represents a state in the A* search.
type AStarNode struct {
	Cell   obstacles.Cell
	GCost  int // Cost from start
	HCost  int // Heuristic cost to goal
	FCost  int // GCost + HCost
	Parent *AStarNode
	Step   Step // Step we entered this node with
	Index  int  // Index in the heap
}

// NodeQueue is a priority queue for A* nodes.
type NodeQueue []*AStarNode

func (nq NodeQueue) Len() int { return len(nq) }
func (nq NodeQueue) Less(i, j int) bool {
	// Primary sort by FCost
	if nq[i].FCost != nq[j].FCost {
		return nq[i].FCost < nq[j].FCost
	}

	// Prefer nodes closer to goal
	if nq[i].HCost != nq[j].HCost {
		return nq[i].HCost < nq[j].HCost
	}

	return symmetricOrder(nq[i].Cell, nq[j].Cell)
}

// symmetricOrder provides a deterministic ordering for otherwise equal nodes.
func symmetricOrder(c1, c2 obstacles.Cell) bool {
	sum1 := c1.X + c1.Y
	sum2 := c2.X + c2.Y
	if sum1 != sum2 {
		return sum1 < sum2
	}
	if c1.X != c2.X {
		return c1.X < c2.X
	}
	return c1.Y < c2.Y
}

func (nq NodeQueue) Swap(i, j int) {
	nq[i], nq[j] = nq[j], nq[i]
	nq[i].Index = i
	nq[j].Index = j
}

func (nq *NodeQueue) Push(x any) {
	node := x.(*AStarNode)
	node.Index = len(*nq)
	*nq = append(*nq, node)
}

func (nq *NodeQueue) Pop() any {
	old := *nq
	n := len(old)
	node := old[n-1]
	old[n-1] = nil  // avoid memory leak
	node.Index = -1 // for safety
	*nq = old[0 : n-1]
	return node
}

// search runs A* from m.Start to m.End and returns the visited cells in order.
// A maxNodes of zero means no limit.
func search(m *obstacles.Map, policy NeighbourPolicy, costs PathCost, maxNodes int) ([]obstacles.Cell, error) {
	if m.Start == m.End {
		return []obstacles.Cell{m.Start}, nil
	}

	steps := policy.Steps()
	diagonal := false
	for _, s := range steps {
		diagonal = diagonal || s.Diagonal()
	}

	openSet := &NodeQueue{}
	heap.Init(openSet)
	closedSet := make(map[obstacles.Cell]bool)
	nodeMap := make(map[obstacles.Cell]*AStarNode)

	startNode := &AStarNode{Cell: m.Start, HCost: heuristic(m.Start, m.End, costs, diagonal)}
	startNode.FCost = startNode.HCost
	heap.Push(openSet, startNode)
	nodeMap[m.Start] = startNode

	nodesExplored := 0
	for openSet.Len() > 0 {
		nodesExplored++
		if maxNodes > 0 && nodesExplored > maxNodes {
			return nil, fmt.Errorf("%w after %d nodes", errNodeLimit, maxNodes)
		}

		current := heap.Pop(openSet).(*AStarNode)
		if current.Cell == m.End {
			return reconstruct(current), nil
		}
		closedSet[current.Cell] = true

		for _, step := range orderSteps(steps, current.Cell, m.End) {
			next := obstacles.Cell{X: current.Cell.X + step.DX, Y: current.Cell.Y + step.DY}
			if closedSet[next] || m.Blocked(next) {
				continue
			}
			// A diagonal step may not cut the corner of an obstacle.
			if step.Diagonal() && (m.Blocked(obstacles.Cell{X: next.X, Y: current.Cell.Y}) ||
				m.Blocked(obstacles.Cell{X: current.Cell.X, Y: next.Y})) {
				continue
			}

			tentativeGCost := current.GCost + stepCost(current, step, costs)

			existing, seen := nodeMap[next]
			if !seen {
				node := &AStarNode{
					Cell:   next,
					GCost:  tentativeGCost,
					HCost:  heuristic(next, m.End, costs, diagonal),
					Parent: current,
					Step:   step,
				}
				node.FCost = node.GCost + node.HCost
				heap.Push(openSet, node)
				nodeMap[next] = node
			} else if tentativeGCost < existing.GCost {
				existing.GCost = tentativeGCost
				existing.FCost = existing.GCost + existing.HCost
				existing.Parent = current
				existing.Step = step
				heap.Fix(openSet, existing.Index)
			}
		}
	}

	return nil, errNoPath
}

// heuristic estimates the remaining cost. Without diagonal steps it is the
// Manhattan distance plus one turn when both axes still need covering.
func heuristic(from, goal obstacles.Cell, costs PathCost, diagonal bool) int {
	dx := geometry.Abs(goal.X - from.X)
	dy := geometry.Abs(goal.Y - from.Y)

	if diagonal {
		lo, hi := min(dx, dy), max(dx, dy)
		return lo*min(costs.DiagonalCost, 2*costs.StraightCost) + (hi-lo)*costs.StraightCost
	}

	h := (dx + dy) * costs.StraightCost
	if dx > 0 && dy > 0 {
		h += costs.TurnCost
	}
	return h
}

// stepCost is the cost of leaving current with step.
func stepCost(current *AStarNode, step Step, costs PathCost) int {
	cost := costs.StraightCost
	if step.Diagonal() {
		cost = costs.DiagonalCost
	}
	if current.Parent != nil && current.Step != step {
		cost += costs.TurnCost
	}
	return cost
}

// reconstruct walks back from the goal node to the start.
func reconstruct(goal *AStarNode) []obstacles.Cell {
	var cells []obstacles.Cell
	for n := goal; n != nil; n = n.Parent {
		cells = append(cells, n.Cell)
	}
	for i, j := 0, len(cells)-1; i < j; i, j = i+1, j-1 {
		cells[i], cells[j] = cells[j], cells[i]
	}
	return cells
}
