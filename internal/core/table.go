package core

// Input column names. Matching is case-insensitive and ignores surrounding
// whitespace and a UTF-8 BOM; extra columns are ignored.
const (
	ColDate     = "date"
	ColHouston  = "gasoline_price"
	ColTexas    = "texas_avg"
	ColNational = "national_avg"
)

// RequiredColumns lists the columns every input must carry.
var RequiredColumns = []string{ColDate, ColHouston, ColTexas, ColNational}

// Table is a raw record set: a header row and untyped data rows, as read
// from a CSV file, a workbook sheet, a spreadsheet range or the dataset DB.
type Table struct {
	Source string
	Header []string
	Rows   [][]string
}
