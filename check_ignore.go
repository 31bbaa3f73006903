package git

// CheckIgnore reports, for each worktree-relative path, whether it is
// matched by the repository's ignore rules.
func (r *Repository) CheckIgnore(paths []string) (map[string]bool, error) {
	idx, err := r.readIndex()
	if err != nil {
		return nil, err
	}
	matcher, err := r.ignoreMatcher(idx)
	if err != nil {
		return nil, err
	}

	out := make(map[string]bool, len(paths))
	for _, p := range paths {
		rel, err := r.worktreeRelative(p)
		if err != nil {
			return nil, err
		}
		out[p] = matcher.Match(rel)
	}
	return out, nil
}
