package cache

// AllAnnouncementsKey caches the full announcement listing
const AllAnnouncementsKey = "announcements:all"

// announcementPattern matches every announcement key, single or listing
const announcementPattern = "announcement*"

// AnnouncementKey caches a single announcement
func AnnouncementKey(announcementID string) string {
	return "announcement:" + announcementID
}

// AssociationKey caches the announcements of one association
func AssociationKey(associationID string) string {
	return "announcements:association:" + associationID
}

// AnnouncementKeys lists every key a mutation of one announcement makes stale
func AnnouncementKeys(announcementID, associationID string) []string {
	keys := []string{AllAnnouncementsKey}
	if announcementID != "" {
		keys = append(keys, AnnouncementKey(announcementID))
	}
	if associationID != "" {
		keys = append(keys, AssociationKey(associationID))
	}
	return keys
}
