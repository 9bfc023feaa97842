package domain

// NormalizeLines collapses duplicate product ids by summing their quantities
// and drops zero-quantity lines. First-seen order is kept.
func NormalizeLines(lines []CartLine) []CartLine {
	return MergeLines(nil, lines)
}

// MergeLines folds incoming into base: quantities are summed for a product id
// present in both, other lines are appended. Neither input is modified.
func MergeLines(base, incoming []CartLine) []CartLine {
	out := make([]CartLine, 0, len(base)+len(incoming))
	index := make(map[string]int, len(base)+len(incoming))

	add := func(line CartLine) {
		if line.Quantity.IsZero() {
			return
		}
		if i, ok := index[line.ProductID.Key()]; ok {
			out[i].Quantity = out[i].Quantity.Add(line.Quantity)
			return
		}
		index[line.ProductID.Key()] = len(out)
		out = append(out, line)
	}

	for _, line := range base {
		add(line)
	}
	for _, line := range incoming {
		add(line)
	}
	return out
}

// FindLine returns the line for productID, if present.
func FindLine(lines []CartLine, productID Nat) Option[CartLine] {
	for _, line := range lines {
		if line.ProductID.Equal(productID) {
			return Some(line)
		}
	}
	return None[CartLine]()
}

// TotalQuantity sums all line quantities
func TotalQuantity(lines []CartLine) Nat {
	total := Nat{}
	for _, line := range lines {
		total = total.Add(line.Quantity)
	}
	return total
}
