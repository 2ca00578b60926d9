package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amine-amaach/simulators/ioTSensorsUaBridge/internal/component"
	"github.com/amine-amaach/simulators/ioTSensorsUaBridge/internal/config"
	"github.com/amine-amaach/simulators/ioTSensorsUaBridge/internal/dispatch"
	"github.com/amine-amaach/simulators/ioTSensorsUaBridge/internal/log"
	"github.com/amine-amaach/simulators/ioTSensorsUaBridge/internal/model"
	"github.com/amine-amaach/simulators/ioTSensorsUaBridge/internal/services"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// ObjectsFolder is the standard root every bridge folder hangs off.
var ObjectsFolder = model.NewNumericNodeID(0, 85)

func Run() {
	// Get configs from file
	cfg, err := config.GetConfigs(logrus.New())
	if err != nil {
		panic(err)
	}

	// Instantiate a new logger
	logger := log.NewLogger(
		cfg.LoggerConfig.Level,
		cfg.LoggerConfig.Format,
		cfg.LoggerConfig.DisableTimestamp,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loop := dispatch.NewEventLoop(dispatch.WithPanicHandler(func(r any) {
		logger.WithFields(logrus.Fields{
			"category": "application",
			"Panic":    r,
		}).Errorln("Deferred callback panicked ⛔")
	}))

	var queueOpts []dispatch.QueueOption
	reg := prometheus.NewRegistry()
	if cfg.EnablePrometheus {
		reg.MustRegister(prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
		queueOpts = append(queueOpts, dispatch.WithMetrics(dispatch.NewMetrics(reg)))
	}
	queue := dispatch.NewQueue(loop, queueOpts...)

	uaSrv, err := services.NewUaSrvService(&cfg.ServerConfig, logger)
	if err != nil {
		logger.WithField("Err", err).Errorln("⛔ Failed to instantiate the OPC UA server, exiting.. ⛔")
		panic(err)
	}

	addressSpace := services.NewAddressSpaceSvc(uaSrv.GetServer().NamespaceManager(), loop, queue, logger)
	addressSpace.Subscribe(services.NewLogListener(logger))
	if cfg.EnablePrometheus {
		addressSpace.Subscribe(services.NewMetricsListener(reg))
	}

	status := model.NewStatusTable()
	publishers := make(chan []*services.SensorPublisher, 1)
	loop.Post(func() {
		pubs, err := BuildAddressSpace(addressSpace, uaSrv.NamespaceIndex(), cfg.Sensors, logger)
		if err != nil {
			logger.WithField("Err", err).Errorln("⛔ Failed to build the address space ⛔")
		}
		publishers <- pubs
	})

	go func() {
		if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.WithField("Err", err).Errorln("Event loop stopped ⛔")
		}
	}()

	go uaSrv.ListenAndServe(logger)

	for _, p := range <-publishers {
		go p.Run(ctx, loop, addressSpace, status, logger)
		logger.WithField("Sensor", p.Name).Infoln("🏷️  Publishing IoT sensor data ...")
	}

	var metricsSrv *http.Server
	if cfg.EnablePrometheus {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		metricsSrv = &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.WithField("Err", err).Errorln("Metrics endpoint stopped ⛔")
			}
		}()
	}

	// Wait for a signal before exiting
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	logger.Infoln("Stopping server...")
	cancel()
	if metricsSrv != nil {
		shutdownCtx, stop := context.WithTimeout(context.Background(), time.Second)
		defer stop()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	if err := uaSrv.Close(); err != nil {
		logger.WithField("Err", err).Warnln("Closing server ⛔")
	}
	logger.Info("Shutdown complete ✅")
}

// BuildAddressSpace creates the IoTSensors folder and one Double variable
// per configured sensor. Sensors without a node id get a generated one.
// Must run on the event loop.
func BuildAddressSpace(svc *services.AddressSpaceSvc, nsi uint16, sensors []component.Sensor, logger *logrus.Logger) ([]*services.SensorPublisher, error) {
	folder := model.NewStringNodeID(nsi, "IoTSensors")
	if err := svc.AddFolder(ObjectsFolder, folder, model.NewQualifiedName(nsi, "IoTSensors"), "IoT Sensors"); err != nil {
		return nil, err
	}

	pubs := make([]*services.SensorPublisher, 0, len(sensors))
	for _, sen := range sensors {
		id, err := sensorNodeID(nsi, sen)
		if err != nil {
			logger.WithFields(logrus.Fields{
				"Sensor": sen.Name,
				"Err":    err,
			}).Errorln("⛔ Invalid sensor node id, skipped ⛔")
			continue
		}
		access := model.AccessLevelRead | model.AccessLevelHistoryRead
		if sen.Writable {
			access = access.With(model.AccessLevelWrite)
		}
		_, err = svc.AddVariable(folder, services.VariableSpec{
			NodeID:                  id,
			BrowseName:              model.NewQualifiedName(nsi, sen.Name),
			DisplayName:             sen.Name,
			Description:             sen.Name + " IoT Sensor Simulator",
			DataType:                model.DataTypeDouble,
			AccessLevel:             access,
			MinimumSamplingInterval: 250.0,
		})
		if err != nil {
			logger.WithFields(logrus.Fields{
				"Sensor": sen.Name,
				"Err":    err,
			}).Errorln("⛔ Failed to add sensor ⛔")
			continue
		}
		logger.WithFields(logrus.Fields{
			"Sensor": sen.Name,
			"NodeId": id.String(),
			"Path":   svc.BrowsePath(id),
		}).Infoln("IoT Sensor config found ⚙️")

		delay := time.Duration(sen.DelayMs) * time.Millisecond
		if delay <= 0 {
			delay = time.Second
		}
		pubs = append(pubs, services.NewSensorPublisher(id, sen.Name, delay, services.NewSensorSvc(sen.Mean, sen.Std)))
	}
	return pubs, nil
}

func sensorNodeID(nsi uint16, sen component.Sensor) (model.NodeID, error) {
	if sen.NodeID != "" {
		return model.ParseNodeID(sen.NodeID)
	}
	id, err := gonanoid.New()
	if err != nil {
		return model.NullNodeID, errors.Wrap(err, "generating node id")
	}
	return model.NewStringNodeID(nsi, sen.Name+"-"+id), nil
}
