package lfs

import "strconv"

// sharedRepositoryMode interprets the value of a repository's
// core.sharedrepository setting the way the reference tool does, yielding
// the file mode that should be granted when core.sharedrepository is not
// "false"/"umask"/empty. A zero return means "leave the umask alone".
func sharedRepositoryMode(sharedRepository string) int {
	switch sharedRepository {
	case "true", "group":
		return 0o660
	case "all", "world", "everybody":
		return 0o664
	case "false", "umask", "":
		return 0
	default:
		v, err := strconv.ParseUint(sharedRepository, 8, 32)
		if err != nil {
			return 0
		}
		return int(v)
	}
}
