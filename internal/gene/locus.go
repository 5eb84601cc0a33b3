package gene

// Locus is a gene position on one genome build. Fields hold the values
// exactly as the metadata service reported them; an empty field means
// the service omitted it.
type Locus struct {
	Chr   string
	Start string
	End   string
}

// FormatLocus renders l as "chr<chr>:<start>-<end>". Missing fields are
// rendered as "N/A" in place; a nil locus renders as "N/A".
func FormatLocus(l *Locus) string {
	if l == nil {
		return NotAvailable
	}
	return "chr" + orNA(l.Chr) + ":" + orNA(l.Start) + "-" + orNA(l.End)
}

func orNA(s string) string {
	if s == "" {
		return NotAvailable
	}
	return s
}
