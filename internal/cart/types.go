package cart

// Line is one cart entry: a product reference plus the name/price snapshot
// taken when the line was first added. Quantity is always >= 1 in persisted
// state; a line dropping to 0 is removed, never kept.
type Line struct {
	ID        string  `json:"id" dynamodbav:"id"`
	Name      string  `json:"name" dynamodbav:"name"`
	UnitPrice float64 `json:"unit_price" dynamodbav:"unit_price"`
	Quantity  int     `json:"quantity" dynamodbav:"quantity"`
}

// Total sums unit price x quantity over all lines.
func Total(lines []Line) float64 {
	var sum float64
	for _, l := range lines {
		sum += l.UnitPrice * float64(l.Quantity)
	}
	return sum
}

// ItemCount sums quantities over all lines.
func ItemCount(lines []Line) int {
	var n int
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

// Quantity returns the quantity for id, 0 if the line is absent.
func Quantity(lines []Line, id string) int {
	for _, l := range lines {
		if l.ID == id {
			return l.Quantity
		}
	}
	return 0
}

// addLine increments an existing line by qty or appends a new one,
// preserving first-added order.
func addLine(lines []Line, id, name string, unitPrice float64, qty int) []Line {
	for i := range lines {
		if lines[i].ID == id {
			lines[i].Quantity += qty
			return lines
		}
	}
	return append(lines, Line{ID: id, Name: name, UnitPrice: unitPrice, Quantity: qty})
}

// changeQuantity applies delta to the line with the given id, flooring at 0.
// A resulting quantity of 0 removes the line; an absent id is a no-op.
func changeQuantity(lines []Line, id string, delta int) []Line {
	for i := range lines {
		if lines[i].ID != id {
			continue
		}
		q := lines[i].Quantity + delta
		if q <= 0 {
			return append(lines[:i], lines[i+1:]...)
		}
		lines[i].Quantity = q
		return lines
	}
	return lines
}

// removeLine drops the line with the given id; absent id is a no-op.
func removeLine(lines []Line, id string) []Line {
	for i := range lines {
		if lines[i].ID == id {
			return append(lines[:i], lines[i+1:]...)
		}
	}
	return lines
}
