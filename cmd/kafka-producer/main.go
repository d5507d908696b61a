package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/highscore-board/internal/domain"
	"github.com/highscore-board/internal/kafka"
)

var playerPrefixes = []string{
	"Phoenix", "Shadow", "Thunder", "Storm", "Blaze", "Ninja", "Dragon", "Wolf", "Hawk", "Viper",
	"Ghost", "Titan", "Frost", "Cyber", "Nova", "Raven", "Omega", "Alpha", "Delta", "Sigma",
}

// Names stay within the 20 character limit
func playerName(idx int) string {
	return fmt.Sprintf("%s%d", playerPrefixes[idx%len(playerPrefixes)], idx/len(playerPrefixes)+1)
}

func main() {
	brokers := flag.String("brokers", "localhost:9092", "Kafka brokers (comma-separated)")
	topic := flag.String("topic", "highscore-submissions", "Kafka topic")
	totalPlayers := flag.Int("players", 100, "Number of players to create")
	levels := flag.Int("levels", 4, "Number of game levels")
	updatesPerSecond := flag.Int("rate", 10, "Level submissions per second")
	duration := flag.Duration("duration", 0, "Duration to run (0 = forever)")
	initialOnly := flag.Bool("initial-only", false, "Only create players, no level submissions")
	flag.Parse()

	if *totalPlayers < 1 || *levels < 1 || *updatesPerSecond < 1 {
		log.Fatal("players, levels and rate must be positive")
	}

	fmt.Printf("Producing to %s on %s: %d players, %d levels, %d/sec\n",
		*topic, *brokers, *totalPlayers, *levels, *updatesPerSecond)

	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForLocal
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Flush.Frequency = 100 * time.Millisecond
	config.Producer.Return.Successes = true
	config.Producer.Return.Errors = true

	producer, err := sarama.NewAsyncProducer(strings.Split(*brokers, ","), config)
	if err != nil {
		log.Fatalf("Failed to create producer: %v", err)
	}

	var successCount, errorCount int64
	var drains errgroup.Group

	drains.Go(func() error {
		for range producer.Successes() {
			atomic.AddInt64(&successCount, 1)
		}
		return nil
	})

	drains.Go(func() error {
		for err := range producer.Errors() {
			atomic.AddInt64(&errorCount, 1)
			log.Printf("Producer error: %v", err)
		}
		return nil
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	finish := func(reason string) {
		fmt.Printf("\n%s\n", reason)
		producer.AsyncClose()
		_ = drains.Wait()
		fmt.Printf("Sent: %d, Errors: %d\n", atomic.LoadInt64(&successCount), atomic.LoadInt64(&errorCount))
	}

	// Player name is the key so one player's messages stay ordered
	send := func(name, messageType string, payload any) {
		data, err := json.Marshal(payload)
		if err != nil {
			log.Printf("Failed to marshal message: %v", err)
			return
		}
		producer.Input() <- &sarama.ProducerMessage{
			Topic: *topic,
			Key:   sarama.StringEncoder(name),
			Value: sarama.ByteEncoder(data),
			Headers: []sarama.RecordHeader{
				{Key: []byte(kafka.MessageTypeHeader), Value: []byte(messageType)},
				{Key: []byte("submission-id"), Value: []byte(uuid.NewString())},
			},
		}
	}

	// Registrations of an existing name are no-ops, so reruns do not duplicate players
	for i := 0; i < *totalPlayers; i++ {
		name := playerName(i)
		send(name, kafka.MessageTypeNewPlayer, domain.NewPlayer{Name: name})
	}
	fmt.Printf("Queued %d player registrations\n", *totalPlayers)

	if *initialOnly {
		finish("Initial-only mode, exiting")
		return
	}

	ticker := time.NewTicker(time.Second / time.Duration(*updatesPerSecond))
	defer ticker.Stop()
	statsTicker := time.NewTicker(5 * time.Second)
	defer statsTicker.Stop()

	var endTime time.Time
	if *duration > 0 {
		endTime = time.Now().Add(*duration)
	}
	var updateCount int64

	for {
		select {
		case <-sigChan:
			finish("Shutting down...")
			return

		case <-ticker.C:
			if *duration > 0 && time.Now().After(endTime) {
				finish("Duration reached, shutting down...")
				return
			}

			name := playerName(rand.Intn(*totalPlayers))
			level := rand.Intn(*levels) + 1
			score := rand.Intn(1000)
			send(name, kafka.MessageTypeHighscore, domain.SubmissionPayload{Name: &name, Level: &level, LevelHighscore: &score})
			updateCount++

		case <-statsTicker.C:
			fmt.Printf("[%s] Submissions: %d | Sent: %d | Errors: %d\n",
				time.Now().Format("15:04:05"),
				updateCount,
				atomic.LoadInt64(&successCount),
				atomic.LoadInt64(&errorCount),
			)
		}
	}
}
