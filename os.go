package ics

// NewLine separates the lines of a rendered calendar. RFC 5545 section 3.1
// delimits content lines with CRLF; the rendered document carries no trailing
// separator after its last line.
const NewLine = "\r\n"
