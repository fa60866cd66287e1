package internal

import "os"

// detectSystemLocale returns the locale string used for currency detection.
// Priority is LC_MONETARY (most specific), LC_ALL, LANG. The "C" and "POSIX"
// locales carry no region and are skipped.
func detectSystemLocale() string {
	for _, envVar := range []string{"LC_MONETARY", "LC_ALL", "LANG"} {
		locale := os.Getenv(envVar)
		if locale != "" && locale != "C" && locale != "POSIX" {
			return locale
		}
	}
	return ""
}
