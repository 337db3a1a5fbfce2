package kobodb

// AnnotationRow is one row of the Bookmark/Content join. Nullable columns
// are pointers; at least one of Text and Annotation is non-nil because the
// query filters rows where both are NULL.
type AnnotationRow struct {
	BookmarkID      string
	ContentID       string
	Text            *string
	Annotation      *string
	DateCreated     *string
	ChapterProgress *float64
	Title           *string
	Attribution     *string
	ContentType     int
}

// ReadingSessionRow is one reading-time row from the content table. The
// device stores TimeSpentReading in seconds; Minutes is converted at the
// scan boundary so callers never see the raw unit.
type ReadingSessionRow struct {
	Title         string
	Minutes       float64
	LastStartedAt string
}

// Counts contains aggregate counts for the status command.
type Counts struct {
	AnnotatedBooks int
	Annotations    int
	Sessions       int
}
