package matcher

// automaton is a byte-level Aho-Corasick machine. Scan reports every
// occurrence of every pattern, overlapping ones included.
type automaton struct {
	nodes    []acNode
	patterns []string
}

type acNode struct {
	next map[byte]int32
	fail int32
	// out is the pattern ending exactly at this node, or -1.
	out int32
	// dict is the nearest node on the failure chain with an output, or -1.
	dict int32
}

const rootNode = 0

func newAutomaton() *automaton {
	return &automaton{nodes: []acNode{{fail: rootNode, out: -1, dict: -1}}}
}

// add inserts pattern and returns its ID. Adding the same string twice
// returns the existing ID.
func (a *automaton) add(pattern string) int {
	state := int32(rootNode)
	for i := 0; i < len(pattern); i++ {
		b := pattern[i]
		node := &a.nodes[state]
		child, ok := node.next[b]
		if !ok {
			child = int32(len(a.nodes))
			if node.next == nil {
				node.next = make(map[byte]int32, 1)
			}
			node.next[b] = child
			a.nodes = append(a.nodes, acNode{out: -1, dict: -1})
		}
		state = child
	}
	if out := a.nodes[state].out; out >= 0 {
		return int(out)
	}
	id := len(a.patterns)
	a.patterns = append(a.patterns, pattern)
	a.nodes[state].out = int32(id)
	return id
}

// build computes failure and dictionary links breadth-first. It must be
// called once after the last add and before the first scan.
func (a *automaton) build() {
	queue := make([]int32, 0, len(a.nodes))
	for _, child := range a.nodes[rootNode].next {
		a.nodes[child].fail = rootNode
		queue = append(queue, child)
	}
	for len(queue) > 0 {
		state := queue[0]
		queue = queue[1:]
		for b, child := range a.nodes[state].next {
			fail := a.nodes[state].fail
			for {
				if target, ok := a.nodes[fail].next[b]; ok {
					a.nodes[child].fail = target
					break
				}
				if fail == rootNode {
					a.nodes[child].fail = rootNode
					break
				}
				fail = a.nodes[fail].fail
			}
			queue = append(queue, child)
		}
		// The failure target is shallower, so its dict link is already final.
		fail := a.nodes[state].fail
		if a.nodes[fail].out >= 0 {
			a.nodes[state].dict = fail
		} else {
			a.nodes[state].dict = a.nodes[fail].dict
		}
	}
}

// scan calls emit for each occurrence with the exclusive end offset in text
// and the pattern ID.
func (a *automaton) scan(text string, emit func(end, pattern int)) {
	state := int32(rootNode)
	for i := 0; i < len(text); i++ {
		b := text[i]
		for {
			if next, ok := a.nodes[state].next[b]; ok {
				state = next
				break
			}
			if state == rootNode {
				break
			}
			state = a.nodes[state].fail
		}
		if out := a.nodes[state].out; out >= 0 {
			emit(i+1, int(out))
		}
		for d := a.nodes[state].dict; d >= 0; d = a.nodes[d].dict {
			emit(i+1, int(a.nodes[d].out))
		}
	}
}

func (a *automaton) patternLen(id int) int {
	return len(a.patterns[id])
}
