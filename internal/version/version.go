package version

// Current is the zipscout release version, without a "v" prefix.
const Current = "0.3.0"
