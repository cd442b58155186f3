package attendance

// ConsolidateIssues folds a day's nested course/student structure into a
// per-student list of attendance issues. Courses are scanned in record
// order; a student's issues follow that order (no sorting). Students are
// returned in first-occurrence order. Entries with an empty student ID are
// skipped: data-quality tolerance, not an error. An empty result means the
// day needs no notifications.
func ConsolidateIssues(rec DailyRecord) []StudentIssues {
	var flagged []StudentIssues
	index := make(map[string]int) // studentID -> position in flagged

	for _, course := range rec.Courses {
		title := course.CourseTitle
		if title == "" {
			title = UnnamedCourse
		}
		for _, entry := range course.Entries {
			if entry.StudentID == "" {
				continue
			}
			if !entry.Status.IsIssue() {
				continue
			}
			pos, ok := index[entry.StudentID]
			if !ok {
				pos = len(flagged)
				index[entry.StudentID] = pos
				flagged = append(flagged, StudentIssues{
					StudentID:   entry.StudentID,
					StudentName: entry.StudentName,
				})
			}
			flagged[pos].Issues = append(flagged[pos].Issues, Issue{
				Status:      entry.Status,
				CourseTitle: title,
			})
		}
	}
	return flagged
}
