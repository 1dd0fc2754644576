package logger

import (
	"encoding/json"
	"log"
	"os"
)

func Init() {
	log.SetOutput(os.Stdout)
	log.SetFlags(0)
	log.Printf(`{"level":"INFO","msg":"logger initialized"}`)
}

func emit(level string, msg string, fields map[string]any) {
	entry := map[string]any{
		"level": level,
		"msg":   msg,
	}
	if len(fields) > 0 {
		entry["fields"] = fields
	}

	data, err := json.Marshal(entry)
	if err != nil {
		log.Printf(`{"level":"%s","msg":"%s"}`, level, msg)
		return
	}

	log.Print(string(data))
}

func Info(msg string, fields map[string]any) {
	emit("INFO", msg, fields)
}

func Warn(msg string, fields map[string]any) {
	emit("WARN", msg, fields)
}

func Error(msg string, fields map[string]any) {
	emit("ERROR", msg, fields)
}

func Fatal(msg string, fields map[string]any) {
	emit("FATAL", msg, fields)
	os.Exit(1)
}
