package util

import "strings"

// ShortClusterName trims provider-qualified cluster identifiers down to the
// cluster's own name for table output:
//
//	arn:aws:eks:us-east-1:123456789012:cluster/prod -> prod
//	gke_my-project_us-central1-a_prod              -> prod
//
// Anything else is returned unchanged.
func ShortClusterName(name string) string {
	switch {
	case strings.HasPrefix(name, "arn:"):
		if idx := strings.LastIndexAny(name, "/:"); idx != -1 && idx < len(name)-1 {
			return name[idx+1:]
		}
	case strings.HasPrefix(name, "gke_"):
		// gke_<project>_<location>_<cluster>
		if parts := strings.SplitN(name, "_", 4); len(parts) == 4 && parts[3] != "" {
			return parts[3]
		}
	}

	return name
}
