package common

// LowStorageThresholdBytes is the low-water mark under which the device is
// considered low on storage (100 MB).
const LowStorageThresholdBytes uint64 = 100 * 1024 * 1024

// DraftTTLDays is how long an unsynced draft is kept before the cleanup
// sweep removes it.
const DraftTTLDays = 30
