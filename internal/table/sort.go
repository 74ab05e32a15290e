// internal/table/sort.go
package table

// IsSorted reports whether the numeric values of column idx are non-increasing
// (descending) or non-decreasing (ascending). Zero or one row is always sorted.
func IsSorted(idx int, rows []Row, descending bool) (bool, error) {
	values, err := ColumnValues(idx, rows)
	if err != nil {
		return false, err
	}
	for i := 1; i < len(values); i++ {
		if descending && values[i-1] < values[i] {
			return false, nil
		}
		if !descending && values[i-1] > values[i] {
			return false, nil
		}
	}
	return true, nil
}

// DescendingFor maps a sort option of the feature table to its direction.
// The dashboard orders the "FALSE" option descending and every other option ascending.
func DescendingFor(option string) bool {
	return option == "FALSE"
}
