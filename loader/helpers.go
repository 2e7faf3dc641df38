package loader

// LoadFilesAndValidate loads every file and logs the outcome of each.
// Returns false if any of them failed.
func (l *Loader) LoadFilesAndValidate(sourceFiles ...string) (results []*LoadResult, success bool) {
	success = true
	for _, f := range sourceFiles {
		result, err := l.LoadFile(f)
		results = append(results, result)
		if err != nil {
			success = false
			l.Logger.Debug("%s: %d error(s)", result.Path, len(result.Errors))
			for _, e := range result.Errors {
				l.Logger.Debug("  %v", e)
			}
			continue
		}
		l.Logger.Debug("%s: validated successfully", result.Path)
	}
	return
}
