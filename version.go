package arbor

// Version is the library version, stamped on tagged releases.
const Version = "0.3.0"
