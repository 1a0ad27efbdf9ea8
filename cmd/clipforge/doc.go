// Command clipforge batch-transforms media assets by generating argument
// lists for, and supervising, ffmpeg.
package main
