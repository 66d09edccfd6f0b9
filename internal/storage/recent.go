package storage

const MaxRecentFiles = 5

// RecentFiles returns the remembered documents, most recent first.
func RecentFiles(s Store) []string {
	var files []string
	if !GetJSON(s, KeyRecentFiles, &files) {
		return nil
	}
	if len(files) > MaxRecentFiles {
		files = files[:MaxRecentFiles]
	}
	return files
}

// TouchRecent moves name to the front of the recent list, dropping the oldest
// entry beyond MaxRecentFiles.
func TouchRecent(s Store, name string) ([]string, error) {
	if name == "" {
		return RecentFiles(s), nil
	}
	files := []string{name}
	for _, existing := range RecentFiles(s) {
		if existing == name {
			continue
		}
		files = append(files, existing)
		if len(files) == MaxRecentFiles {
			break
		}
	}
	if err := SetJSON(s, KeyRecentFiles, files); err != nil {
		return nil, err
	}
	return files, nil
}
